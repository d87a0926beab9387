package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/datastore"
	"github.com/sigboard/sigboard/pkg/util"
)

const (
	AutoSaveName string = "auto_save"
)

// Workspace is the persisted session: dataset descriptors by display name, plus the
// dashboard layout, which is stored as given.
type Workspace struct {
	DataStore map[string]dataset.Descriptor `json:"data_store"`
	Layout    interface{}                   `json:"layout"`
}

type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("workspace '%s' cannot be serialized: %s", e.Path, e.Err.Error())
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// FromStore captures the descriptors of every dataset in store
func FromStore(store *datastore.Store, layout interface{}) *Workspace {
	ws := &Workspace{
		DataStore: make(map[string]dataset.Descriptor, store.Len()),
		Layout:    layout,
	}
	for _, ds := range store.Datasets() {
		ws.DataStore[ds.Name()] = ds.Descriptor()
	}
	return ws
}

// Marshal encodes the workspace, failing with a SerializationError on values JSON cannot hold
func Marshal(ws *Workspace) ([]byte, error) {
	content, err := json.MarshalIndent(ws, "", "    ")
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return content, nil
}

// Save writes ws to filePath. The workspace is encoded before any file is touched and the
// previous file is only replaced once the new content is fully written.
func Save(filePath string, ws *Workspace) error {
	content, err := Marshal(ws)
	if err != nil {
		var serr *SerializationError
		if errors.As(err, &serr) {
			serr.Path = filePath
		}
		return err
	}

	if err := util.WriteFileAtomic(filePath, content, 0644); err != nil {
		return fmt.Errorf("failed to save workspace '%s': %w", filePath, err)
	}
	return nil
}

func Load(filePath string) (*Workspace, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace '%s': %w", filePath, err)
	}

	var ws Workspace
	if err := json.Unmarshal(content, &ws); err != nil {
		return nil, fmt.Errorf("failed to parse workspace '%s': %w", filePath, err)
	}
	if ws.DataStore == nil {
		ws.DataStore = make(map[string]dataset.Descriptor)
	}
	return &ws, nil
}

// AutoSavePath is the workspace written on shutdown and restored on start
func AutoSavePath(appDir string) string {
	return filepath.Join(appDir, ".sigboard", AutoSaveName+".json")
}
