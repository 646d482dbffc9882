package utils

import (
	"fmt"
	"os"
)

// UserHomeDirPath returns ~/xftp, creating it if needed. Used as
// the default base directory when XFTP_BASE_DIR is not set.
func UserHomeDirPath() string {
	p, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("error while getting user home dir: %w", err))
	}

	baseDir := fmt.Sprintf("%s/xftp", p)

	if _, err := os.Stat(baseDir); err != nil {
		if os.IsNotExist(err) {
			if err := os.Mkdir(baseDir, 0o750); err != nil {
				panic(fmt.Errorf("error while creating xftp base dir: %w", err))
			}
		} else {
			panic(fmt.Errorf("error while checking if file exists: %w", err))
		}
	}

	return baseDir
}
