/*
File Name:  Log.go

Thin wrapper over the standard log package, mirroring the teacher's
InitLog: logs go to stdout by default, or additionally to a file when
configured.
*/

package core

import (
	"io"
	"log"
	"os"
)

// NewLogger builds a logger per cfg.LogFile. If LogFile is empty, the
// logger only writes to stdout.
func NewLogger(cfg *Config) (*log.Logger, error) {
	out := io.Writer(os.Stdout)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
	}

	return log.New(out, "", log.LstdFlags), nil
}
