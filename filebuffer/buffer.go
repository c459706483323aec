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
	"github.com/pkg/errors"
)

// BufferRef is a ref-counted handle onto a resident frame, released via
// Release (idempotent, null-safe — §9's scoped-acquisition pattern). The
// dirty bit set by Write propagates to the frame on release, not
// immediately, matching §5's "dirty bit propagates to the frame on
// release".
type BufferRef struct {
	mgr       *BufferManager
	fr        *frame
	exclusive bool
	dirty     bool
}

// Bytes returns the frame's page-sized buffer. Callers holding an
// exclusive lock may write into it directly. Release marks the frame dirty
// only when MarkDirty was called on this ref; Write calls MarkDirty itself.
func (b *BufferRef) Bytes() []byte { return b.fr.buf }

// MarkDirty flags the referenced frame dirty, to be flushed by a later
// FlushFile/Flush.
func (b *BufferRef) MarkDirty() { b.dirty = true }

// Release unlocks the frame, propagating any pending dirty flag.
func (b *BufferRef) Release() {
	if b == nil || b.mgr == nil {
		return
	}
	b.mgr.mu.Lock()
	defer b.mgr.mu.Unlock()
	if b.dirty {
		b.fr.dirty = true
	}
	if b.fr.users > 0 {
		b.fr.users--
	}
	b.mgr = nil
}

// FixPage returns a ref-counted buffer for (fileRef, page), per §4.G.
func (m *BufferManager) FixPage(fileRef *FileRef, page PageID, exclusive bool) (*BufferRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[fileRef.id]
	if !ok {
		return nil, errors.New("filebuffer: FixPage on a released file")
	}
	fr, err := m.fixPageLocked(f, page, exclusive)
	if err != nil {
		return nil, err
	}
	return &BufferRef{mgr: m, fr: fr, exclusive: exclusive}, nil
}

func (m *BufferManager) pageAndSkip(offset int64) (PageID, int) {
	return PageID(uint64(offset) >> m.pageSizeBits), int(uint64(offset) & uint64(m.pageSize-1))
}

// Read copies up to len(dst) bytes starting at offset from fileRef into
// dst, one page at a time (§4.G).
func (m *BufferManager) Read(fileRef *FileRef, dst []byte, offset int64) (int, error) {
	total := 0
	for total < len(dst) {
		page, skip := m.pageAndSkip(offset + int64(total))
		ref, err := m.FixPage(fileRef, page, false)
		if err != nil {
			return total, err
		}
		n := copy(dst[total:], ref.Bytes()[skip:])
		ref.Release()
		total += n
		if n == 0 {
			break
		}
	}
	return total, nil
}

// Write copies src into fileRef starting at offset, one page at a time,
// marking each touched frame dirty and bumping the file's required size
// past EOF (§4.G).
func (m *BufferManager) Write(fileRef *FileRef, src []byte, offset int64) (int, error) {
	total := 0
	for total < len(src) {
		pos := offset + int64(total)
		page, skip := m.pageAndSkip(pos)
		ref, err := m.FixPage(fileRef, page, true)
		if err != nil {
			return total, err
		}
		n := copy(ref.Bytes()[skip:], src[total:])
		ref.MarkDirty()
		ref.Release()
		total += n

		m.mu.Lock()
		if f, ok := m.files[fileRef.id]; ok {
			required := pos + int64(n)
			if required > f.required {
				f.required = required
			}
		}
		m.mu.Unlock()

		if n == 0 {
			break
		}
	}
	return total, nil
}

// flushFrameLocked grows the backing file via Truncate(required) if
// required exceeds the on-disk size, then writes the frame's buffer back
// and clears its dirty bit.
func (m *BufferManager) flushFrameLocked(fr *frame) error {
	f, ok := m.files[fr.file]
	if !ok {
		return nil
	}
	if f.required > f.size {
		if err := f.handle.Truncate(f.required); err != nil {
			return errors.Wrapf(err, "filebuffer: grow file %d to %d bytes", f.id, f.required)
		}
		f.size = f.required
	}
	offset := int64(fr.page) * int64(m.pageSize)
	n := len(fr.buf)
	if offset+int64(n) > f.size {
		n = int(f.size - offset)
	}
	if n > 0 {
		if _, err := f.handle.WriteAt(fr.buf[:n], offset); err != nil {
			return errors.Wrapf(err, "filebuffer: flush page %d of file %d", fr.page, f.id)
		}
	}
	fr.dirty = false
	m.logger.Tracef("filebuffer: flushed page %d of file %d", fr.page, f.id)
	return nil
}

// FlushFile flushes every resident frame belonging to fileRef, in page-id
// order.
func (m *BufferManager) FlushFile(fileRef *FileRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[fileRef.id]
	if !ok {
		return nil
	}
	if f.required > f.size {
		if err := f.handle.Truncate(f.required); err != nil {
			return errors.Wrapf(err, "filebuffer: grow file %d to %d bytes", f.id, f.required)
		}
		f.size = f.required
	}

	var frames []*frame
	for _, fr := range m.frames {
		if fr.file == fileRef.id {
			frames = append(frames, fr)
		}
	}
	for i := 0; i < len(frames); i++ {
		for j := i + 1; j < len(frames); j++ {
			if frames[j].page < frames[i].page {
				frames[i], frames[j] = frames[j], frames[i]
			}
		}
	}
	for _, fr := range frames {
		if fr.dirty {
			if err := m.flushFrameLocked(fr); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every resident frame across every open file.
func (m *BufferManager) Flush() error {
	m.mu.Lock()
	ids := make([]FileID, 0, len(m.files))
	for id := range m.files {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.FlushFile(&FileRef{mgr: m, id: id}); err != nil {
			return err
		}
	}
	return nil
}

// Truncate evicts every frame of fileRef (flushing dirty ones), truncates
// the backing handle to n bytes, and resets both the on-disk and required
// size bookkeeping (§4.G).
func (m *BufferManager) Truncate(fileRef *FileRef, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.files[fileRef.id]
	if !ok {
		return errors.New("filebuffer: Truncate on a released file")
	}
	if err := m.evictFileFramesLocked(fileRef.id, true); err != nil {
		return err
	}
	if err := f.handle.Truncate(n); err != nil {
		return errors.Wrapf(err, "filebuffer: truncate file %d to %d bytes", f.id, n)
	}
	f.size = n
	f.required = n
	return nil
}
