// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package filebuffer implements the paged frame cache described in
// dashql/SPEC_FULL.md §4.G: a fixed-capacity pool of page-sized buffers
// over externally supplied file handles, replaced under a 2-queue
// (FIFO+LRU) eviction policy.
package filebuffer

import (
	"github.com/pkg/errors"

	"github.com/ankoh/dashql-sub002/catalogerr"
)

// FileID is the 16-bit identifier a BufferManager assigns an open file,
// the high bits of a FrameID.
type FileID = uint16

// PageID is a file-relative page number, the low 48 bits of a FrameID.
type PageID = uint64

// idLimit bounds the number of simultaneously open files at the same
// 16-bit ceiling as the catalog's id spaces; exhaustion reuses the
// catalog's fatal error kind (§7: file-id exhaustion is fatal), wrapped via
// pkg/errors with the OpenFile context.
const idLimit = 65535

// Handle is the embedder-supplied file primitive §6 consumes: opened file
// handles exposing Read/Write/GetFileSize/Truncate. The buffer manager
// never opens files itself — it only ever holds a Handle passed to OpenFile.
type Handle interface {
	ReadAt(dst []byte, offset int64) (int, error)
	WriteAt(src []byte, offset int64) (int, error)
	Size() (int64, error)
	Truncate(size int64) error
}

type openFile struct {
	id       FileID
	path     string
	handle   Handle
	size     int64
	required int64
	refCount int
}

// FileRef is a scoped reference to a file registered with a BufferManager.
// It is released via Release, which is idempotent and null-safe (a moved-
// out FileRef has mgr == nil), matching §9's "deferred scoped resource
// release" pattern.
type FileRef struct {
	mgr *BufferManager
	id  FileID
}

// ID returns the file's BufferManager-assigned identifier.
func (f *FileRef) ID() FileID { return f.id }

// Release decrements the file's reference count; at zero every resident
// frame is evicted (flushing dirty ones), the handle is released, and the
// file id returns to the free-id stack (§4.G ReleaseFile).
func (f *FileRef) Release() error {
	if f == nil || f.mgr == nil {
		return nil
	}
	err := f.mgr.releaseFile(f.id)
	f.mgr = nil
	return err
}

// OpenFile registers handle under path with the manager, returning a scoped
// FileRef. Re-opening an already-open path bumps its reference count
// instead of allocating a second file id.
func (m *BufferManager) OpenFile(path string, handle Handle) (*FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.pathToID[path]; ok {
		m.files[id].refCount++
		return &FileRef{mgr: m, id: id}, nil
	}

	if len(m.freeIDs) == 0 && m.nextID >= idLimit {
		return nil, errors.Wrap(catalogerr.ErrLimitExceeded.New("file id space exhausted"), "filebuffer: OpenFile")
	}

	size, err := handle.Size()
	if err != nil {
		return nil, errors.Wrap(err, "filebuffer: stat opened file")
	}

	var id FileID
	if n := len(m.freeIDs); n > 0 {
		id = m.freeIDs[n-1]
		m.freeIDs = m.freeIDs[:n-1]
	} else {
		id = m.nextID
		m.nextID++
	}

	m.files[id] = &openFile{id: id, path: path, handle: handle, size: size, required: size, refCount: 1}
	m.pathToID[path] = id
	return &FileRef{mgr: m, id: id}, nil
}

// releaseFile implements ReleaseFile (§4.G): decrement refcount, and on
// zero evict every frame belonging to the file (flushing dirty ones),
// drop the path mapping, and return the id to the free stack.
func (m *BufferManager) releaseFile(id FileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[id]
	if !ok {
		return nil
	}
	f.refCount--
	if f.refCount > 0 {
		return nil
	}

	if err := m.evictFileFramesLocked(id, true); err != nil {
		return err
	}
	delete(m.pathToID, f.path)
	delete(m.files, id)
	m.freeIDs = append(m.freeIDs, id)
	return nil
}
