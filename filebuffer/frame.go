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

package filebuffer

import (
	"container/list"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FrameID encodes (file_id:16, page_id:48), per §4.G.
type FrameID = uint64

func makeFrameID(file FileID, page PageID) FrameID {
	return (FrameID(file) << 48) | (page & 0x0000FFFFFFFFFFFF)
}

// queueKind tags which of the two admission queues a resident frame
// currently sits in.
type queueKind uint8

const (
	queueFIFO queueKind = iota
	queueLRU
)

// frame is one resident page buffer plus its eviction bookkeeping.
type frame struct {
	id     FrameID
	file   FileID
	page   PageID
	buf    []byte
	dirty  bool
	users  int
	queue  queueKind
	elem   *list.Element
}

// BufferManager is the fixed-capacity frame pool described in §4.G. It is
// single-threaded per §5's concurrency model but guards its state with a
// mutex anyway, matching the teacher's `memory` package convention of
// making in-process caches safe to share across goroutines even when the
// embedder does not strictly require it.
type BufferManager struct {
	mu sync.Mutex

	pageSizeBits uint
	pageSize     uint32
	pageCapacity int

	files    map[FileID]*openFile
	pathToID map[string]FileID
	nextID   FileID
	freeIDs  []FileID

	frames   map[FrameID]*frame
	fifo     *list.List
	lru      *list.List
	elements map[FrameID]*list.Element

	logger logrus.FieldLogger
}

// NewBufferManager returns an empty pool with page_size = 1<<pageSizeBits
// and the given frame capacity.
func NewBufferManager(pageSizeBits uint, pageCapacity int, logger logrus.FieldLogger) *BufferManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BufferManager{
		pageSizeBits: pageSizeBits,
		pageSize:     1 << pageSizeBits,
		pageCapacity: pageCapacity,
		files:        make(map[FileID]*openFile),
		pathToID:     make(map[string]FileID),
		frames:       make(map[FrameID]*frame),
		fifo:         list.New(),
		lru:          list.New(),
		elements:     make(map[FrameID]*list.Element),
		logger:       logger,
	}
}

// PageSize returns the configured page size in bytes.
func (m *BufferManager) PageSize() uint32 { return m.pageSize }

// FIFOPages returns resident page ids currently in the FIFO queue, head
// first, for test inspection (§6: "inspection of FIFO and LRU queues for
// testing").
func (m *BufferManager) FIFOPages(file FileID) []PageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return queuePages(m.fifo, file)
}

// LRUPages returns resident page ids currently in the LRU queue, head
// first.
func (m *BufferManager) LRUPages(file FileID) []PageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return queuePages(m.lru, file)
}

func queuePages(q *list.List, file FileID) []PageID {
	var out []PageID
	for e := q.Front(); e != nil; e = e.Next() {
		f := e.Value.(*frame)
		if f.file == file {
			out = append(out, f.page)
		}
	}
	return out
}

// fixPageLocked implements FixPage (§4.G): resident frames move to the LRU
// tail; fresh frames are allocated, loaded, and inserted at the FIFO tail.
// Exclusive locks are rejected while the frame has any other user.
func (m *BufferManager) fixPageLocked(f *openFile, page PageID, exclusive bool) (*frame, error) {
	fid := makeFrameID(f.id, page)

	if fr, ok := m.frames[fid]; ok {
		if exclusive && fr.users > 0 {
			return nil, errors.Errorf("filebuffer: page %d of file %d is already locked", page, f.id)
		}
		m.moveToLRUTail(fr)
		fr.users++
		return fr, nil
	}

	fr, err := m.allocateFrameBuffer(fid, f.id, page)
	if err != nil {
		return nil, err
	}
	if err := m.loadFrame(f, fr); err != nil {
		return nil, err
	}
	fr.users++
	return fr, nil
}

// allocateFrameBuffer returns a fresh or recycled page buffer for fid,
// inserting it at the FIFO tail, evicting under capacity pressure per
// FindFrameToEvict: first unused frame in FIFO order, else first unused in
// LRU order; over-commit (no evictable frame) falls back to allocating
// anyway, since locking already bounds concurrency.
func (m *BufferManager) allocateFrameBuffer(fid FrameID, file FileID, page PageID) (*frame, error) {
	var buf []byte
	if len(m.frames) >= m.pageCapacity {
		victim, ok := m.findFrameToEvict()
		if ok {
			if err := m.evictFrame(victim); err != nil {
				return nil, err
			}
			buf = victim.buf
		}
	}
	if buf == nil {
		buf = make([]byte, m.pageSize)
	} else {
		for i := range buf {
			buf[i] = 0
		}
	}

	fr := &frame{id: fid, file: file, page: page, buf: buf, queue: queueFIFO}
	fr.elem = m.fifo.PushBack(fr)
	m.frames[fid] = fr
	m.elements[fid] = fr.elem
	return fr, nil
}

// findFrameToEvict implements FindFrameToEvict: the first unused frame
// walking the FIFO queue head-to-tail, else the first unused frame walking
// the LRU queue head-to-tail.
func (m *BufferManager) findFrameToEvict() (*frame, bool) {
	for e := m.fifo.Front(); e != nil; e = e.Next() {
		if fr := e.Value.(*frame); fr.users == 0 {
			return fr, true
		}
	}
	for e := m.lru.Front(); e != nil; e = e.Next() {
		if fr := e.Value.(*frame); fr.users == 0 {
			return fr, true
		}
	}
	return nil, false
}

func (m *BufferManager) evictFrame(fr *frame) error {
	if fr.dirty {
		if err := m.flushFrameLocked(fr); err != nil {
			return err
		}
	}
	m.removeFromQueueLocked(fr)
	delete(m.frames, fr.id)
	delete(m.elements, fr.id)
	return nil
}

func (m *BufferManager) removeFromQueueLocked(fr *frame) {
	switch fr.queue {
	case queueFIFO:
		m.fifo.Remove(fr.elem)
	case queueLRU:
		m.lru.Remove(fr.elem)
	}
}

// moveToLRUTail removes fr from whichever queue holds it and reinserts it
// at the LRU tail: §8's 2Q monotonicity property — a page never moves from
// LRU back into FIFO.
func (m *BufferManager) moveToLRUTail(fr *frame) {
	m.removeFromQueueLocked(fr)
	fr.queue = queueLRU
	fr.elem = m.lru.PushBack(fr)
}

func (m *BufferManager) loadFrame(f *openFile, fr *frame) error {
	offset := int64(fr.page) * int64(m.pageSize)
	if offset >= f.size {
		return nil
	}
	n, err := f.handle.ReadAt(fr.buf, offset)
	if err != nil {
		return errors.Wrapf(err, "filebuffer: load page %d of file %d", fr.page, f.id)
	}
	m.logger.Tracef("filebuffer: loaded page %d of file %d (%d bytes)", fr.page, f.id, n)
	return nil
}

// evictFileFramesLocked evicts every resident frame belonging to file,
// flushing dirty ones first when flush is true (ReleaseFile and Truncate
// both route through this).
func (m *BufferManager) evictFileFramesLocked(file FileID, flush bool) error {
	var victims []*frame
	for _, fr := range m.frames {
		if fr.file == file {
			victims = append(victims, fr)
		}
	}
	sort.Slice(victims, func(i, j int) bool { return victims[i].page < victims[j].page })
	for _, fr := range victims {
		if flush && fr.dirty {
			if err := m.flushFrameLocked(fr); err != nil {
				return err
			}
		}
		m.removeFromQueueLocked(fr)
		delete(m.frames, fr.id)
		delete(m.elements, fr.id)
	}
	return nil
}
