package preset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the preset at path whenever it changes and passes the
// result to onChange. Decode and watcher errors go to onError. The
// containing directory is watched so editors that save by renaming a temp
// file over path are picked up. Watching stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Preset), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		// ignore close error
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				p, err := load(target)
				if err != nil {
					onError(err)
					continue
				}
				onChange(p)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onError(err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
