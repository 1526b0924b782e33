// Package file loads the TOML configuration file.
//
// The file lists the polling workers and carries every credential and
// storage setting; nothing is read from the environment.
//
//	data_dir = "/var/lib/sercha-ingest"
//
//	[storage]
//	backend = "sqlite"
//
//	[twitter]
//	bearer_token = "..."
//
//	[[workers]]
//	screen_name = "acct1"
//	interval = "15m"
//	media_kinds = ["photo", "video"]
package file
