// Package main provides the entry point for the linkcast CLI.
//
// linkcast has two independent jobs. It scans web pages and reports their
// internal and external links (optionally following external links one hop),
// and it publishes a media file with a caption to social platforms.
//
// Usage:
//
//	linkcast scan <url>...
//	linkcast upload <file> --caption <text> --platform youtube,tiktok
//
// See --help for all available options.
package main

// main is the entry point for linkcast.
func main() {
	Execute()
}
