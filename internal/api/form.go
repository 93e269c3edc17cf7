package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// File is an upload attached to a multipart form.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Form is a multipart/form-data body. Fields keep insertion order.
type Form struct {
	fields []formField
	files  []File

	built *bytes.Buffer
	ctype string
}

type formField struct {
	name  string
	value string
}

func NewForm() *Form {
	return &Form{}
}

func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// SetIf adds the field only when value is non-empty.
func (f *Form) SetIf(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Set(name, value)
}

func (f *Form) SetInt(name string, v int64) *Form {
	return f.Set(name, strconv.FormatInt(v, 10))
}

func (f *Form) SetFloat(name string, v float64) *Form {
	return f.Set(name, strconv.FormatFloat(v, 'f', -1, 64))
}

func (f *Form) AddFile(file File) *Form {
	f.files = append(f.files, file)
	return f
}

// Value returns the first value set for name.
func (f *Form) Value(name string) (string, bool) {
	for _, fld := range f.fields {
		if fld.name == name {
			return fld.value, true
		}
	}
	return "", false
}

func (f *Form) build() error {
	if f.built != nil {
		return nil
	}
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return fmt.Errorf("writing field %s: %w", fld.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("creating file part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copying %s: %w", file.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}
	f.built = buf
	f.ctype = w.FormDataContentType()
	return nil
}

// contentType is valid once payload has built the body.
func (f *Form) contentType() string {
	return f.ctype
}

func (f *Form) payload() (io.Reader, error) {
	if err := f.build(); err != nil {
		return nil, err
	}
	return bytes.NewReader(f.built.Bytes()), nil
}
