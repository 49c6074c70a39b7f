package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/ugmart/storefront/internal/domain/catalog"
	"github.com/ugmart/storefront/internal/domain/shared"
)

// formBuilder accumulates a multipart/form-data body
type formBuilder struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newFormBuilder() *formBuilder {
	f := &formBuilder{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *formBuilder) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.w.WriteField(name, value)
}

// jsonField writes v JSON-encoded, the way the backend expects list fields
func (f *formBuilder) jsonField(name string, v any) {
	if f.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		f.err = err
		return
	}
	f.err = f.w.WriteField(name, string(data))
}

func (f *formBuilder) file(name string, u shared.Upload) {
	if f.err != nil {
		return
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, u.Filename))
	ct := u.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := f.w.CreatePart(h)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(u.Data)
}

// finish closes the writer and returns the body and its content type
func (f *formBuilder) finish() (*bytes.Buffer, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("backend: build form: %w", f.err)
	}
	if err := f.w.Close(); err != nil {
		return nil, "", fmt.Errorf("backend: build form: %w", err)
	}
	return &f.buf, f.w.FormDataContentType(), nil
}

func productForm(d catalog.ProductDraft) *formBuilder {
	f := newFormBuilder()
	f.field("name", d.Name)
	f.field("description", d.Description)
	f.field("price", strconv.FormatFloat(d.Price, 'f', -1, 64))
	f.field("categoryId", d.CategoryID)
	f.field("stock", strconv.Itoa(d.Stock))
	f.field("brand", d.Brand)
	if d.Gender != "" {
		f.field("gender", d.Gender)
	}
	f.jsonField("color", nonNil(d.Colors))
	f.jsonField("sizes", nonNil(d.Sizes))
	f.field("isFeatured", strconv.FormatBool(d.IsFeatured))
	for _, u := range d.ImageURLs {
		f.field("imageUrls", u)
	}
	for _, img := range d.Images {
		f.file("images", img)
	}
	return f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
