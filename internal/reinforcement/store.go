package reinforcement

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
)

const (
	FileName       = "reinforcements.json"
	defaultVersion = "1.0"
)

// * Store keeps reinforcement notes in <root>/<username>/reinforcements.json
type Store struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

func NewStore(root string) *Store {
	return &Store{root: root, now: time.Now}
}

// SkipEntry reports whether a document root entry is not a team member directory.
func SkipEntry(name string) bool {
	return name == "README.md" || strings.HasPrefix(name, ".")
}

// Users lists team member directories under the root, sorted. A missing root yields none.
func (s *Store) Users() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.New(
			"REINFORCEMENT_IO_ERROR",
			"Failed to list team members",
			fmt.Sprintf("Could not read document root '%s'", s.root),
			err,
			errors.LevelError,
		)
	}

	users := []string{}
	for _, e := range entries {
		if e.IsDir() && !SkipEntry(e.Name()) {
			users = append(users, e.Name())
		}
	}
	sort.Strings(users)
	return users, nil
}

// Get returns the user's reinforcements, creating the default file when none exists yet.
func (s *Store) Get(username string) (*models.ReinforcementFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(username)
}

func (s *Store) Add(username string, r models.Reinforcement) (*models.ReinforcementFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(username)
	if err != nil {
		return nil, err
	}

	r.ID = file.NextID()
	r.DateAdded = s.today()
	file.Reinforcements = append(file.Reinforcements, r)

	return file, s.save(username, file)
}

// Update replaces reinforcement id. The id is always kept and dateAdded is kept unless
// the update carries one.
func (s *Store) Update(username string, id int, r models.Reinforcement) (*models.ReinforcementFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(username)
	if err != nil {
		return nil, err
	}

	idx := indexOf(file.Reinforcements, id)
	if idx < 0 {
		return nil, notFound(username, id)
	}

	r.ID = id
	if r.DateAdded == "" {
		r.DateAdded = file.Reinforcements[idx].DateAdded
	}
	file.Reinforcements[idx] = r

	return file, s.save(username, file)
}

func (s *Store) Delete(username string, id int) (*models.ReinforcementFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(username)
	if err != nil {
		return nil, err
	}

	idx := indexOf(file.Reinforcements, id)
	if idx < 0 {
		return nil, notFound(username, id)
	}
	file.Reinforcements = append(file.Reinforcements[:idx], file.Reinforcements[idx+1:]...)

	return file, s.save(username, file)
}

func (s *Store) load(username string) (*models.ReinforcementFile, error) {
	path, err := s.path(username)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		file := &models.ReinforcementFile{Version: defaultVersion, Reinforcements: []models.Reinforcement{}}
		if err := s.save(username, file); err != nil {
			return nil, err
		}
		logger.Info("Created default reinforcements for %s", username)
		return file, nil
	}
	if err != nil {
		return nil, errors.New(
			"REINFORCEMENT_IO_ERROR",
			"Failed to read reinforcements",
			fmt.Sprintf("Could not read %s", path),
			err,
			errors.LevelError,
		)
	}

	var file models.ReinforcementFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Parse("Failed to parse reinforcements", fmt.Sprintf("%s is not valid JSON", path), err)
	}
	if file.Reinforcements == nil {
		file.Reinforcements = []models.Reinforcement{}
	}
	return &file, nil
}

func (s *Store) save(username string, file *models.ReinforcementFile) error {
	path, err := s.path(username)
	if err != nil {
		return err
	}

	file.LastUpdated = s.today()

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Parse("Failed to encode reinforcements", "", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(
			"REINFORCEMENT_IO_ERROR",
			"Failed to create user directory",
			fmt.Sprintf("Could not create %s", filepath.Dir(path)),
			err,
			errors.LevelError,
		)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.New(
			"REINFORCEMENT_IO_ERROR",
			"Failed to write reinforcements",
			fmt.Sprintf("Could not write %s", path),
			err,
			errors.LevelError,
		)
	}
	return nil
}

func (s *Store) path(username string) (string, error) {
	if username == "" || SkipEntry(username) || strings.ContainsAny(username, `/\`) {
		return "", errors.Parse("Invalid username", fmt.Sprintf("'%s' is not a team member directory name", username), nil)
	}
	return filepath.Join(s.root, username, FileName), nil
}

func (s *Store) today() string {
	return s.now().Format(time.DateOnly)
}

func indexOf(list []models.Reinforcement, id int) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func notFound(username string, id int) error {
	return errors.NotFound("Reinforcement not found", fmt.Sprintf("%s has no reinforcement with id %d", username, id), nil)
}
