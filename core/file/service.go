package file

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Service manages uploaded files. Contents go to the BlobStore, metadata to the files collection.
type Service struct {
	files    core.Collection[File]
	fileType core.Ref[FileType]
	blobs    core.BlobStore
	validate *validator.Validate
	deps     []core.Dependent
}

func NewService(
	files core.Collection[File],
	types core.Collection[FileType],
	blobs core.BlobStore,
	validate *validator.Validate,
	deps ...core.Dependent,
) *Service {
	return &Service{
		files:    files,
		fileType: core.NewRef("type", types),
		blobs:    blobs,
		validate: validate,
		deps:     deps,
	}
}

// Store validates nf, uploads blob and saves the file metadata.
// The blob is uploaded only once the file type resolved.
func (svc *Service) Store(ctx context.Context, nf NewFile, blob core.Blob) (File, error) {
	if err := nf.Validate(svc.validate); err != nil {
		return File{}, err
	}
	if nf.Name == "" {
		nf.Name = path.Base(blob.Name)
	}
	typeID, err := svc.fileType.ResolveOptional(ctx, nf.Type)
	if err != nil {
		return File{}, err
	}

	key := "files/" + uuid.New().String() + strings.ToLower(path.Ext(blob.Name))
	url, err := svc.blobs.Put(ctx, key, blob)
	if err != nil {
		return File{}, core.StoreFailure(err, "uploading file")
	}

	now := time.Now().UTC()
	f := File{
		ID:          primitive.NewObjectID(),
		Name:        nf.Name,
		Key:         key,
		URL:         url,
		ContentType: blob.ContentType,
		Size:        blob.Size,
		Type:        typeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return core.Insert(ctx, svc.files, f)
}

func (svc *Service) Upload(ctx context.Context, nf NewFile, blob core.Blob) (FileView, error) {
	f, err := svc.Store(ctx, nf, blob)
	if err != nil {
		return FileView{}, err
	}
	return svc.format(ctx, f)
}

func (svc *Service) Get(ctx context.Context, id string) (FileView, error) {
	f, err := core.Fetch(ctx, svc.files, id)
	if err != nil {
		return FileView{}, err
	}
	return svc.format(ctx, f)
}

func (svc *Service) List(ctx context.Context) ([]FileView, error) {
	files, err := svc.files.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying files")
	}
	return core.FormatAll(ctx, files, svc.format)
}

func (svc *Service) ListByType(ctx context.Context, typeID string) ([]FileView, error) {
	files, err := core.ListBy(ctx, svc.files, FieldType, svc.fileType, typeID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, files, svc.format)
}

func (svc *Service) Update(ctx context.Context, id string, uf UpdateFile) (FileView, error) {
	f, err := core.Fetch(ctx, svc.files, id)
	if err != nil {
		return FileView{}, err
	}
	if err = uf.Validate(svc.validate); err != nil {
		return FileView{}, err
	}

	patch := core.NewPatch().SetString(core.FieldName, uf.Name)
	if _, err = svc.fileType.Apply(ctx, patch, FieldType, uf.Type); err != nil {
		return FileView{}, err
	}
	if f, err = core.ApplyPatch(ctx, svc.files, f.ID, patch); err != nil {
		return FileView{}, err
	}
	return svc.format(ctx, f)
}

// Delete removes the file metadata, then its content.
func (svc *Service) Delete(ctx context.Context, id string) (FileView, error) {
	f, err := core.Remove(ctx, svc.files, id, svc.deps...)
	if err != nil {
		return FileView{}, err
	}
	if err = svc.blobs.Delete(ctx, f.Key); err != nil {
		return FileView{}, core.StoreFailure(err, "deleting file content")
	}
	return svc.format(ctx, f)
}

// URL hydrates a file reference into the file's URL.
func (svc *Service) URL(ctx context.Context, id *primitive.ObjectID) (string, error) {
	if id == nil || id.IsZero() {
		return "", nil
	}
	f, err := svc.files.Get(ctx, *id)
	if err != nil {
		if core.IsNotFound(err) {
			return "", nil
		}
		return "", errors.Wrap(err, "finding file")
	}
	return f.URL, nil
}

// URLs hydrates file references into URLs, skipping missing files.
func (svc *Service) URLs(ctx context.Context, ids []primitive.ObjectID) ([]string, error) {
	urls := make([]string, 0, len(ids))
	for i := range ids {
		url, err := svc.URL(ctx, &ids[i])
		if err != nil {
			return nil, err
		}
		if url != "" {
			urls = append(urls, url)
		}
	}
	return urls, nil
}

func (svc *Service) format(ctx context.Context, f File) (FileView, error) {
	typeName, err := svc.fileType.Name(ctx, f.Type)
	if err != nil {
		return FileView{}, err
	}
	return FileView{
		ID:          f.ID.Hex(),
		Name:        f.Name,
		URL:         f.URL,
		ContentType: f.ContentType,
		Size:        f.Size,
		Type:        typeName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}, nil
}
