package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

var ErrUploadTooLarge = errors.New("uploaded file is too large")

// ReadTextUpload reads an uploaded file and rejects it unless the sniffed
// content type is text (yaml and json definitions sniff as text/plain).
func ReadTextUpload(fileHeader *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if fileHeader.Size > maxBytes {
		return nil, ErrUploadTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(content)) > maxBytes {
		return nil, ErrUploadTooLarge
	}
	if len(content) == 0 {
		return nil, errors.New("file is empty")
	}
	if err := ValidateTextContent(content); err != nil {
		return nil, err
	}
	return content, nil
}

func ValidateTextContent(content []byte) error {
	n := len(content)
	if n > 512 {
		n = 512
	}
	contentType := http.DetectContentType(content[:n])
	if !strings.HasPrefix(contentType, "text/plain") {
		return fmt.Errorf("invalid file type: %s", contentType)
	}
	return nil
}
