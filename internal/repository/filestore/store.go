// Package filestore keeps invite codes in a flat JSON object mapping each code
// to its used flag:
//
//	{
//	    "ABCD1234EFGH5678": false,
//	    "QWER0987TYUI6543": true
//	}
//
// Object order is insertion order. Every mutation rewrites the whole file via
// a temp file and rename, so a crash leaves either the old or the new file.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/repository"
)

type Store struct {
	path string

	mu    sync.Mutex
	used  map[string]bool
	order []string
}

var _ repository.InviteCodeRepository = (*Store)(nil)

// Open loads the file at path, or starts empty when it does not exist yet.
// An empty path keeps codes in memory only.
func Open(path string) (*Store, error) {
	s := &Store{path: path, used: map[string]bool{}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := s.decode(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// decode walks the object token by token so the on-disk order survives.
func (s *Store) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", tok)
		}
		var used bool
		if err := dec.Decode(&used); err != nil {
			return fmt.Errorf("code %q: %w", code, err)
		}
		if _, seen := s.used[code]; !seen {
			s.order = append(s.order, code)
		}
		s.used[code] = used
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON object")
	}
	return nil
}

func (s *Store) encode() ([]byte, error) {
	var buf bytes.Buffer
	if len(s.order) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("{\n")
	for i, code := range s.order {
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "    %s: %t", key, s.used[code])
		if i < len(s.order)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// persist writes the current state. Callers hold mu.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := s.encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	logger.EnterMethod("filestore.Insert")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.used[code]; ok {
		logger.ExitMethod("filestore.Insert", "inserted", false)
		return false, nil
	}
	s.used[code] = false
	s.order = append(s.order, code)
	if err := s.persist(); err != nil {
		delete(s.used, code)
		s.order = s.order[:len(s.order)-1]
		logger.ExitMethodWithError("filestore.Insert", err)
		return false, err
	}

	logger.ExitMethod("filestore.Insert", "inserted", true)
	return true, nil
}

func (s *Store) Get(ctx context.Context, code string) (*domain.InviteCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	used, ok := s.used[code]
	if !ok {
		return nil, domain.ErrUnknownCode
	}
	return &domain.InviteCode{Code: code, Used: used}, nil
}

func (s *Store) Claim(ctx context.Context, code string) (domain.ClaimResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClaimUnknown, err
	}
	logger.EnterMethod("filestore.Claim")

	s.mu.Lock()
	defer s.mu.Unlock()

	used, ok := s.used[code]
	switch {
	case !ok:
		logger.ExitMethod("filestore.Claim", "result", domain.ClaimUnknown)
		return domain.ClaimUnknown, nil
	case used:
		logger.ExitMethod("filestore.Claim", "result", domain.ClaimAlreadyUsed)
		return domain.ClaimAlreadyUsed, nil
	}

	s.used[code] = true
	if err := s.persist(); err != nil {
		s.used[code] = false
		logger.ExitMethodWithError("filestore.Claim", err)
		return domain.ClaimUnknown, err
	}

	logger.ExitMethod("filestore.Claim", "result", domain.ClaimClaimed)
	return domain.ClaimClaimed, nil
}

func (s *Store) ListActive(ctx context.Context) ([]domain.InviteCode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := []domain.InviteCode{}
	for _, code := range s.order {
		if !s.used[code] {
			codes = append(codes, domain.InviteCode{Code: code})
		}
	}
	return codes, nil
}

func (s *Store) WipeAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	logger.EnterMethod("filestore.WipeAll")

	s.mu.Lock()
	defer s.mu.Unlock()

	prevUsed, prevOrder := s.used, s.order
	s.used = map[string]bool{}
	s.order = nil
	if err := s.persist(); err != nil {
		s.used, s.order = prevUsed, prevOrder
		logger.ExitMethodWithError("filestore.WipeAll", err)
		return 0, err
	}

	n := int64(len(prevOrder))
	logger.ExitMethod("filestore.WipeAll", "removed", n)
	return n, nil
}

func (s *Store) Close() error {
	return nil
}
