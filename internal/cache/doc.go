// Package cache keeps synthesized PCM so re-reading a sentence does not
// launch the synthesizer again. Clips live in a byte-bounded memory LRU
// backed by a zstd-compressed directory on disk.
package cache
