package feed

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// fileReadBuffer sizes the buffered reader in front of capture files. Daily
// captures run tens of gigabytes, so reads are worth batching.
const fileReadBuffer = 1 << 20

// Open opens a capture file as a byte source, decompressing transparently
// when the file starts with the gzip magic bytes.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}

	br := bufio.NewReaderSize(f, fileReadBuffer)

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip capture: %w", err)
		}
		return &gzipSource{gz: gz, file: f}, nil
	}

	// Peek errors (e.g. an empty file) fall through; the decoder reports
	// a clean EOF on its own.
	return &fileSource{br: br, file: f}, nil
}

type fileSource struct {
	br   *bufio.Reader
	file *os.File
}

func (s *fileSource) Read(p []byte) (int, error) { return s.br.Read(p) }
func (s *fileSource) Close() error               { return s.file.Close() }

type gzipSource struct {
	gz   *gzip.Reader
	file *os.File
}

func (s *gzipSource) Read(p []byte) (int, error) { return s.gz.Read(p) }

func (s *gzipSource) Close() error {
	gzErr := s.gz.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return gzErr
}
