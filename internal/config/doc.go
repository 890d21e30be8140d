// Package config resolves the exporter configuration from four layers:
// hardcoded defaults, an optional YAML file, environment variables, and
// command-line flags — later layers win.
//
// The API token is the only required value and is never stored in the file;
// the file carries the name of the environment variable to read it from
// (token_env, default UNIFI_API_TOKEN), and the -token flag overrides both.
//
// Watch(ctx, path, flags, onChange) uses fsnotify to detect file changes
// and calls onChange with the newly resolved Config. It handles the
// rename→create pattern used by atomic-save editors (vim, VS Code) by
// re-adding the watch after a rename event.
package config
