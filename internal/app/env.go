package app

import (
    "errors"
    "io/fs"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

// LoadEnvFiles loads one or more dotenv files into the process environment.
// Later files override earlier ones; variables already present in the real
// environment are overridden too, matching the order files are given. Missing
// files are skipped.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        vals, err := godotenv.Read(p)
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) {
                continue
            }
            return err
        }
        for k, v := range vals {
            _ = os.Setenv(k, v)
        }
    }
    return nil
}
