package utils

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// PathExists returns true if path exists in the system or false if it doesnt
// in case of error, and error is returned
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// FirstExistingPath returns the absolute form of the first path in paths which exists,
// or an empty string if none exists
func FirstExistingPath(paths []string) (string, error) {
	for _, p := range paths {
		exist, err := PathExists(p)
		if err != nil {
			return "", err
		}
		if exist {
			return filepath.Abs(p)
		}
	}
	return "", nil
}

// SetupSignalHandler returns a context which is cancelled on SIGINT or SIGTERM.
// a second signal terminates the process.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}
