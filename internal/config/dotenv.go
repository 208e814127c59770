package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvFileVar names an alternative .env file. Variables already present in
// the process environment always win over file values.
const DotEnvFileVar = "TODOLIST_ENV_FILE"

func loadDotEnv() error {
	path, explicit := os.LookupEnv(DotEnvFileVar)
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
