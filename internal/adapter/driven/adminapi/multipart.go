package adminapi

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody streams file (as form field "file") plus any extra text
// fields through a pipe, so the file is never held in memory. The file is
// opened up front so open errors surface before any request is sent.
func multipartBody(file model.File, fields map[string]string) (io.ReadCloser, string, error) {
	if file.Open == nil {
		return nil, "", fmt.Errorf("file %q has no content", file.Name)
	}
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %q: %w", file.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer src.Close()
		pw.CloseWithError(writeMultipart(mw, file.Name, src, fields))
	}()

	return pr, mw.FormDataContentType(), nil
}

func writeMultipart(mw *multipart.Writer, name string, src io.Reader, fields map[string]string) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("writing field %q: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentTypeFor(name))

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copying %q: %w", name, err)
	}
	return mw.Close()
}

// contentTypeFor guesses the part content type from the file extension. The
// detection endpoint rejects parts that are not image/*.
func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
