package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// chunkSize задает размер блока при потоковой записи и хешировании.
const chunkSize = 1 << 20

var (
	ErrFileTooLarge = errors.New("uploaded file exceeds allowed size")
	ErrEmptyFile    = errors.New("uploaded file is empty")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SavedFile описывает файл, сохраненный на диске.
type SavedFile struct {
	Filename    string
	StoredPath  string
	SizeBytes   int64
	SHA256      string
	ContentType string
}

// FileStore кладет загруженные файлы в датированные каталоги под общим
// корнем: <root>/<owner>/<YYYY>/<MM>/<DD>/<имя>. Владельцем выступает либо
// заказ (project_<external_id>), либо пользователь (user_<uid>).
type FileStore struct {
	root     string
	maxBytes int64
}

func NewFileStore(root string, maxUploadMB int) *FileStore {
	return &FileStore{
		root:     root,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// MaxUploadMB возвращает потолок размера загрузки в мегабайтах.
func (s *FileStore) MaxUploadMB() int {
	return int(s.maxBytes / (1024 * 1024))
}

func (s *FileStore) SaveProjectFile(r io.Reader, externalID *int64, name, contentType string) (*SavedFile, error) {
	owner := "project_unknown"
	if externalID != nil {
		owner = fmt.Sprintf("project_%d", *externalID)
	}
	return s.save(r, owner, name, contentType)
}

func (s *FileStore) SaveUserFile(r io.Reader, uid uuid.UUID, name, contentType string) (*SavedFile, error) {
	return s.save(r, "user_"+uid.String(), name, contentType)
}

func (s *FileStore) save(r io.Reader, owner, name, contentType string) (*SavedFile, error) {
	now := time.Now().UTC()
	dir := filepath.Join(s.root, owner,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		fmt.Sprintf("%02d", now.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	target, err := uniquePath(filepath.Join(dir, SanitizeFilename(name)))
	if err != nil {
		return nil, err
	}

	out, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > s.maxBytes {
				out.Close()
				os.Remove(target)
				return nil, ErrFileTooLarge
			}
			hasher.Write(buf[:n])
			if _, err := out.Write(buf[:n]); err != nil {
				out.Close()
				os.Remove(target)
				return nil, fmt.Errorf("write file: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(target)
			return nil, fmt.Errorf("read upload stream: %w", readErr)
		}
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return nil, fmt.Errorf("close file: %w", err)
	}
	if total == 0 {
		os.Remove(target)
		return nil, ErrEmptyFile
	}

	stored, err := filepath.Abs(target)
	if err != nil {
		stored = target
	}
	return &SavedFile{
		Filename:    filepath.Base(target),
		StoredPath:  stored,
		SizeBytes:   total,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		ContentType: contentType,
	}, nil
}

// SanitizeFilename убирает путь и заменяет небезопасные символы, чтобы имя
// нельзя было использовать для выхода за пределы каталога загрузок.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	cleaned := unsafeChars.ReplaceAllString(base, "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}

// uniquePath возвращает путь, не занятый существующим файлом. При коллизии к
// имени добавляется отметка времени и случайный суффикс.
func uniquePath(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(ext)]

	token := make([]byte, 4)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate filename suffix: %w", err)
	}
	name := fmt.Sprintf("%s__%s_%s%s", stem, time.Now().UTC().Format("20060102150405"), hex.EncodeToString(token), ext)
	return filepath.Join(dir, name), nil
}
