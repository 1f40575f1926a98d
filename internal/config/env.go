package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override uploader credentials from the config file.
const (
	EnvInstagramAccessToken = "LINKCAST_INSTAGRAM_ACCESS_TOKEN"
	EnvInstagramUserID      = "LINKCAST_INSTAGRAM_USER_ID"
	EnvLinkedInAccessToken  = "LINKCAST_LINKEDIN_ACCESS_TOKEN"
	EnvLinkedInAuthorURN    = "LINKCAST_LINKEDIN_AUTHOR_URN"
	EnvTikTokAccessToken    = "LINKCAST_TIKTOK_ACCESS_TOKEN"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set are not overwritten.
// With no arguments it loads ".env" from the current directory.
// Missing files are ignored so that a .env file stays optional.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv overrides uploader credentials with values from the environment.
// lookup is usually os.LookupEnv; empty values are ignored.
func (u *UploadersSection) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	override := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	override(&u.Instagram.AccessToken, EnvInstagramAccessToken)
	override(&u.Instagram.UserID, EnvInstagramUserID)
	override(&u.LinkedIn.AccessToken, EnvLinkedInAccessToken)
	override(&u.LinkedIn.AuthorURN, EnvLinkedInAuthorURN)
	override(&u.TikTok.AccessToken, EnvTikTokAccessToken)
}
