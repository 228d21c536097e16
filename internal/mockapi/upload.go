// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mockapi

import (
	"github.com/google/uuid"
)

const defaultUploadSize = 100 * 1024

// upload records the "file" part, or the first part when none is named
// file. Content is never stored.
func (e *Engine) upload(r *request) Reply {
	u := upload{ID: uuid.NewString(), Name: "mock-file", Size: defaultUploadSize}
	if f, ok := r.file("file"); ok {
		if f.Name != "" {
			u.Name = f.Name
		}
		if f.Size > 0 {
			u.Size = f.Size
		}
	}
	u.URL = "/mock/upload/" + u.ID
	e.store.uploads = append(e.store.uploads, u)
	return success(u, "uploaded")
}
