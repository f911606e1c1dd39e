package alarms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/vlarm/internal/config"
	domain "github.com/oshokin/vlarm/internal/domain/alarm"
	pb "github.com/oshokin/vlarm/internal/pb/v1"
)

// Repository defines persistence operations for the alarm list.
type Repository interface {
	Load(ctx context.Context) ([]domain.Alarm, error)
	Save(ctx context.Context, alarms []domain.Alarm) error
}

// FileRepository persists the alarm list to a JSON file on disk.
// The file holds a protojson array of alarm objects, the same encoding the
// gRPC API uses for a single alarm.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// ErrNotFound is returned when the alarm file does not exist yet.
var ErrNotFound = errors.New("alarm list not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the alarm list from disk.
func (r *FileRepository) Load(_ context.Context) ([]domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarm file: %w", err)
	}

	var list structpb.ListValue
	if err = protojson.Unmarshal(contents, &list); err != nil {
		return nil, fmt.Errorf("decode alarm file: %w", err)
	}

	alarms, err := pb.AlarmsFromList(&list)
	if err != nil {
		return nil, fmt.Errorf("decode alarm file: %w", err)
	}

	return alarms, nil
}

// Save replaces the file with alarms. The write goes through a temporary file
// in the same directory so a crash never leaves a truncated list behind.
func (r *FileRepository) Save(_ context.Context, alarms []domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(pb.AlarmsToList(alarms))
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	tmp := r.path + ".tmp"

	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarm file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace alarm file: %w", err)
	}

	return nil
}

// MemoryRepository keeps the list in memory. It backs the offline CLI and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	alarms []domain.Alarm
	saves  int
}

// NewMemoryRepository returns a repository preloaded with a copy of alarms.
func NewMemoryRepository(alarms ...domain.Alarm) *MemoryRepository {
	return &MemoryRepository{
		alarms: append([]domain.Alarm(nil), alarms...),
	}
}

// Load returns a copy of the stored list. An empty repository reports ErrNotFound.
func (r *MemoryRepository) Load(context.Context) ([]domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.alarms == nil {
		return nil, ErrNotFound
	}

	return append([]domain.Alarm(nil), r.alarms...), nil
}

// Save stores a copy of alarms.
func (r *MemoryRepository) Save(_ context.Context, alarms []domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alarms = append(make([]domain.Alarm, 0, len(alarms)), alarms...)
	r.saves++

	return nil
}

// Saves returns how many times Save was called.
func (r *MemoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}
