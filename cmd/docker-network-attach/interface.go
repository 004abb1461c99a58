package main

import (
	"context"
	"os"
)

type application interface {
	Run(ctx context.Context, signals <-chan os.Signal) error
	Close() error
}
