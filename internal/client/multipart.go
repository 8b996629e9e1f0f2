package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"craftmart/internal/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody builds the "file" + "product" form the create/update
// endpoints take. The JSON part is a named blob with its own content type.
func multipartBody(payload any, img domain.ImagePayload) (io.Reader, string, error) {
	file, err := domain.AsMultipart(img)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ctype := file.ContentType
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Filename)))
	h.Set("Content-Type", ctype)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, "", fmt.Errorf("%w: read image: %v", domain.ErrInvalidInput, err)
	}

	h = make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="product"; filename="blob"`)
	h.Set("Content-Type", "application/json")
	part, err = w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(part).Encode(payload); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
