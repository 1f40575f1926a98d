// Package config provides configuration structures and utilities for linkcast.
// It defines the scanner's transport settings, report preferences and the
// per-platform uploader credentials read from the .linkcast file and the
// environment.
package config
