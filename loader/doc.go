// Package loader reads FML files on behalf of the renderer. Dir reads the
// host file system, FS reads any io/fs file system and Watcher wraps Dir
// with an fsnotify watch on every loaded file. A missing file is reported
// as *NotFoundError, which matches ErrNotFound.
package loader
