package utils

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// maxFormMemory ограничивает объем, который штатный парсер держит в памяти,
// остальное он сбрасывает во временные файлы.
const maxFormMemory = 32 << 20

// FormFile представляет файл, извлеченный из multipart-тела.
type FormFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ParsedForm хранит поля формы независимо от того, каким парсером они получены.
type ParsedForm struct {
	Values map[string][]string
	Files  map[string][]*FormFile
}

func NewParsedForm() *ParsedForm {
	return &ParsedForm{
		Values: make(map[string][]string),
		Files:  make(map[string][]*FormFile),
	}
}

// Empty сообщает, что ни одно поле не было извлечено.
func (f *ParsedForm) Empty() bool {
	return len(f.Values) == 0 && len(f.Files) == 0
}

// FirstValue возвращает первое текстовое значение по списку имен-псевдонимов.
func (f *ParsedForm) FirstValue(names ...string) (string, bool) {
	for _, name := range names {
		if vals, ok := f.Values[name]; ok && len(vals) > 0 {
			return vals[0], true
		}
	}
	return "", false
}

// FirstFile возвращает первый файл по списку имен-псевдонимов. Повторно
// отправленное поле превращается в список, побеждает первый элемент.
func (f *ParsedForm) FirstFile(names ...string) *FormFile {
	for _, name := range names {
		if files, ok := f.Files[name]; ok && len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

// ParseForm разбирает multipart-тело: сначала штатным парсером стандартной
// библиотеки, при неудаче или пустом результате запускается ручной
// разборщик, терпимый к битым границам от автоматических клиентов.
func ParseForm(body []byte, contentTypeHeader string) (*ParsedForm, error) {
	form, err := parseFormStandard(body, contentTypeHeader)
	if err == nil && !form.Empty() {
		return form, nil
	}
	if err != nil {
		log.Printf("Standard multipart parse failed, falling back to manual parser: %v", err)
	}
	return ParseMultipartBody(body, contentTypeHeader)
}

func parseFormStandard(body []byte, contentTypeHeader string) (*ParsedForm, error) {
	boundary, err := multipartBoundary(contentTypeHeader)
	if err != nil {
		return nil, err
	}

	mf, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxFormMemory)
	if err != nil {
		return nil, err
	}
	defer mf.RemoveAll()

	form := NewParsedForm()
	for name, vals := range mf.Value {
		form.Values[name] = append(form.Values[name], vals...)
	}
	for name, headers := range mf.File {
		for _, fh := range headers {
			file, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("open multipart file %q: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return nil, fmt.Errorf("read multipart file %q: %w", fh.Filename, err)
			}
			form.Files[name] = append(form.Files[name], &FormFile{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return form, nil
}

// ParseMultipartBody реализует ручной разбор multipart-тела. Делит сырые байты по
// объявленной границе и вытаскивает Content-Disposition каждой части сам,
// поэтому переживает тела без завершающего маркера и с неполными CRLF.
func ParseMultipartBody(body []byte, contentTypeHeader string) (*ParsedForm, error) {
	boundary, err := multipartBoundary(contentTypeHeader)
	if err != nil {
		return nil, err
	}

	form := NewParsedForm()
	segments := bytes.Split(body, []byte("--"+boundary))
	for i, segment := range segments {
		if i == 0 {
			// Преамбула до первой границы
			continue
		}
		if bytes.HasPrefix(segment, []byte("--")) {
			// Закрывающий маркер
			break
		}

		part := trimLeadingNewline(segment)
		if len(part) == 0 {
			continue
		}

		headerBytes, payload, ok := splitPart(part)
		if !ok {
			continue
		}

		headers, err := parsePartHeaders(headerBytes)
		if err != nil {
			continue
		}

		disposition, params, err := mime.ParseMediaType(headers.Get("Content-Disposition"))
		if err != nil || disposition != "form-data" {
			continue
		}
		name := params["name"]
		if name == "" {
			continue
		}

		payload = trimTrailingNewline(payload)
		if filename := params["filename"]; filename != "" {
			form.Files[name] = append(form.Files[name], &FormFile{
				Filename:    filename,
				ContentType: headers.Get("Content-Type"),
				Data:        payload,
			})
		} else {
			form.Values[name] = append(form.Values[name], string(payload))
		}
	}
	return form, nil
}

func multipartBoundary(contentTypeHeader string) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentTypeHeader)
	if err != nil {
		return "", fmt.Errorf("parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return "", fmt.Errorf("unexpected media type %q", mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return "", errors.New("multipart boundary is not declared")
	}
	return boundary, nil
}

// splitPart отделяет заголовки части от ее содержимого по первой пустой строке.
func splitPart(part []byte) (headers, payload []byte, ok bool) {
	if idx := bytes.Index(part, []byte("\r\n\r\n")); idx >= 0 {
		return part[:idx], part[idx+4:], true
	}
	if idx := bytes.Index(part, []byte("\n\n")); idx >= 0 {
		return part[:idx], part[idx+2:], true
	}
	return nil, nil, false
}

func parsePartHeaders(headerBytes []byte) (textproto.MIMEHeader, error) {
	block := append(append([]byte{}, headerBytes...), "\r\n\r\n"...)
	reader := textproto.NewReader(bufio.NewReader(bytes.NewReader(block)))
	return reader.ReadMIMEHeader()
}

func trimLeadingNewline(b []byte) []byte {
	if bytes.HasPrefix(b, []byte("\r\n")) {
		return b[2:]
	}
	if bytes.HasPrefix(b, []byte("\n")) {
		return b[1:]
	}
	return b
}

func trimTrailingNewline(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}
