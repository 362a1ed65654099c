package store

import (
	"os"
	"sync"

	"github.com/cfiledb/cfiledb/pkg/cfile"
)

// readerManager caches initialized CFile readers per column. A reader is
// immutable once initialized, so a cached one can back any number of
// concurrent iterators; the cache only needs to be invalidated when a
// column is rewritten or dropped.
type readerManager struct {
	mutex   sync.RWMutex
	readers map[string]*openReader
}

type openReader struct {
	file   *os.File
	reader *cfile.Reader
}

func newReaderManager() *readerManager {
	return &readerManager{
		readers: make(map[string]*openReader),
	}
}

// get returns the cached reader for a column, if any.
func (m *readerManager) get(name string) (*cfile.Reader, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	or, ok := m.readers[name]
	if !ok {
		return nil, false
	}
	return or.reader, true
}

// open initializes a reader over the given file path and caches it. If a
// reader for the column already exists it is reused.
func (m *readerManager) open(name, path string) (*cfile.Reader, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if or, ok := m.readers[name]; ok {
		return or.reader, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	reader := cfile.NewReader(file, uint64(info.Size()))
	if err := reader.Init(); err != nil {
		file.Close()
		return nil, err
	}

	m.readers[name] = &openReader{file: file, reader: reader}
	return reader, nil
}

// invalidate drops the cached reader for a column, closing its file.
func (m *readerManager) invalidate(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if or, ok := m.readers[name]; ok {
		or.file.Close()
		delete(m.readers, name)
	}
}

// closeAll drops every cached reader.
func (m *readerManager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for name, or := range m.readers {
		or.file.Close()
		delete(m.readers, name)
	}
}
