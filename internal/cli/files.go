package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// collectStyleFiles expands the given arguments into a list of style
// files. Directory arguments are only descended into when recursive is
// set, matching style documents by the .qml extension.
func collectStyleFiles(args []string, recursive bool) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		if !recursive {
			return nil, fmt.Errorf("%s is a directory, use --recursive to process it", arg)
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(path, ".qml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}

	return files, nil
}
