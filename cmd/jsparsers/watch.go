// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

func (a *app) watchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate, then generate again whenever the schema changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, fs, err := a.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			paths := cfg.WatchedPaths()
			if len(paths) == 0 {
				return errors.WithHint(errors.New("no schema input to watch"),
					"set descriptor_set or proto.files to existing files")
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "creating watcher")
			}
			defer watcher.Close()
			// directories are watched, since tools replace files by renaming
			watched := map[string]struct{}{}
			dirs := map[string]struct{}{}
			for _, p := range paths {
				p = filepath.Clean(p)
				watched[p] = struct{}{}
				dirs[filepath.Dir(p)] = struct{}{}
			}
			for dir := range dirs {
				if err := watcher.Add(dir); err != nil {
					return errors.Wrapf(err, "watching %s", dir)
				}
			}

			regenerate := func() {
				if _, err := generate(cmd.Context(), cfg, fs, log, cmd.OutOrStdout()); err != nil {
					log.Error("generation failed", zap.Error(err))
				}
			}
			regenerate()
			log.Info("watching", zap.Strings("paths", paths))
			return watch(cmd.Context(), watcher.Events, watcher.Errors, watched, debounce, regenerate, log)
		},
	}
	addSchemaFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "time to wait for further changes before generating")
	return cmd
}

// watch calls fn once changes to the watched files settle, until ctx is
// done or the event channel is closed.
func watch(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	watched map[string]struct{},
	debounce time.Duration,
	fn func(),
	log *zap.Logger,
) error {
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, ok := watched[filepath.Clean(event.Name)]; !ok {
				continue
			}
			log.Debug("schema changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			fn()
		}
	}
}
