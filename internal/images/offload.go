package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/agenda/internal/common"
)

// ErrForeignRef is returned for an object reference that is not the one
// stored under the record's own key.
var ErrForeignRef = errors.New("image reference belongs to another record")

// Offloader uploads inline base64 images and returns the reference to store
// in their place. A nil *Offloader leaves images inline.
type Offloader struct {
	store Store
}

func NewOffloader(store Store) *Offloader {
	return &Offloader{store: store}
}

// Offload uploads image under key when it is inline base64 text. Nil values,
// text that is not base64 and the reference already stored under key are
// returned unchanged. Any other reference fails with ErrorValidation.
func (o *Offloader) Offload(ctx context.Context, key string, image *string) (*string, error) {
	if o == nil || o.store == nil || image == nil {
		return image, nil
	}
	if IsRef(*image) {
		if !o.Owns(key, *image) {
			return nil, fmt.Errorf("%w: %w", common.ErrorValidation, ErrForeignRef)
		}
		return image, nil
	}
	data, contentType, ok := DecodeInline(*image)
	if !ok {
		return image, nil
	}
	ref, err := o.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// Owns reports whether ref is the object stored under key.
func (o *Offloader) Owns(key, ref string) bool {
	return o != nil && o.store != nil && ref == o.store.Ref(key)
}

// URL returns a URL valid for a short time for the object stored under key,
// or "" when ref is not an object reference.
func (o *Offloader) URL(ctx context.Context, key, ref string) (string, error) {
	if o == nil || o.store == nil || !IsRef(ref) {
		return "", nil
	}
	if !o.Owns(key, ref) {
		return "", ErrForeignRef
	}
	return o.store.PresignGet(ctx, ref)
}

// DecodeInline decodes "data:<type>;base64,<payload>" or bare base64 text.
func DecodeInline(s string) ([]byte, string, bool) {
	contentType := ""
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", false
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, true
}

// Remove deletes the object stored under key when ref points at it. Inline
// images are ignored.
func (o *Offloader) Remove(ctx context.Context, key string, ref *string) error {
	if o == nil || o.store == nil || ref == nil || !IsRef(*ref) {
		return nil
	}
	if !o.Owns(key, *ref) {
		return ErrForeignRef
	}
	return o.store.Delete(ctx, *ref)
}
