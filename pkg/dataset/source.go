package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nwsirlp/skillgraph/internal/storage"
	"github.com/nwsirlp/skillgraph/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/singleflight"
)

// Source lists and reads the files of one seed data set.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads a dataset from a local directory.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *FileSource) Read(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}

// S3Source reads a dataset below an S3 key prefix. Reads are cached and
// deduplicated, so a retried import does not re-download the same file.
type S3Source struct {
	client *awss3.Client
	prefix string

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewS3Source(client *awss3.Client, prefix string) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Source{
		client: client,
		prefix: prefix,
		cache:  make(map[string][]byte),
	}
}

func (s *S3Source) List(ctx context.Context) ([]string, error) {
	keys, err := storage.ListFilesWithPrefix(ctx, s.client, s.prefix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, s.prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *S3Source) Read(ctx context.Context, name string) ([]byte, error) {
	key := s.prefix + name

	s.cacheMu.RLock()
	if cached, ok := s.cache[key]; ok {
		s.cacheMu.RUnlock()
		return cached, nil
	}
	s.cacheMu.RUnlock()

	result, err, _ := s.group.Do(key, func() (any, error) {
		s.cacheMu.RLock()
		if cached, ok := s.cache[key]; ok {
			s.cacheMu.RUnlock()
			return cached, nil
		}
		s.cacheMu.RUnlock()

		content, err := storage.GetFile(ctx, s.client, key)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		s.cache[key] = *content
		s.cacheMu.Unlock()

		return *content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Load reads every recognized file from the source and merges it into one
// dataset. Unrecognized files are logged and skipped, so a dataset prefix
// can share a bucket folder with other artifacts.
func Load(ctx context.Context, src Source) (Dataset, error) {
	names, err := src.List(ctx)
	if err != nil {
		return Dataset{}, err
	}

	var ds Dataset
	for _, name := range names {
		content, err := src.Read(ctx, name)
		if err != nil {
			return Dataset{}, fmt.Errorf("failed to read dataset file %s: %w", name, err)
		}

		switch {
		case strings.HasSuffix(name, ".json"):
			part, err := ParseJSON(content)
			if err != nil {
				return Dataset{}, fmt.Errorf("%s: %w", name, err)
			}
			ds.Employees = append(ds.Employees, part.Employees...)
			ds.Skills = append(ds.Skills, part.Skills...)
			ds.Possessions = append(ds.Possessions, part.Possessions...)
		case strings.HasPrefix(name, "employees") && strings.HasSuffix(name, ".csv"):
			ds.Employees = append(ds.Employees, ParseEmployeesCSV(content)...)
		case strings.HasPrefix(name, "skills") && strings.HasSuffix(name, ".csv"):
			ds.Skills = append(ds.Skills, ParseSkillsCSV(content)...)
		case strings.HasPrefix(name, "possessions") && strings.HasSuffix(name, ".csv"):
			ds.Possessions = append(ds.Possessions, ParsePossessionsCSV(content)...)
		default:
			logger.Debug("[Dataset] Skipping unrecognized file", "name", name)
		}
	}

	return ds, nil
}
