// Package s3transport хранит чанки передачи как отдельные объекты S3-совместимого бакета.
//
// Раскладка: <prefix>/<transfer>/chunk-000000 … и <prefix>/<transfer>/meta.json,
// который появляется только после успешной финализации.
package s3transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

const (
	metaChecksum    = "sha256"
	metaTotalChunks = "total-chunks"
)

// API — подмножество s3.Client, которым пользуется транспорт.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Options — параметры подключения к бакету.
type Options struct {
	Profile  string
	Region   string
	Endpoint string // для MinIO и прочих S3-совместимых хранилищ
}

// Transport реализует транспорт передачи поверх S3.
type Transport struct {
	api    API
	target Target
	now    func() time.Time
}

// New загружает стандартную AWS-конфигурацию и создаёт транспорт для адреса s3://bucket/prefix.
func New(ctx context.Context, rawTarget string, opts Options) (*Transport, error) {
	target, err := ParseTarget(rawTarget)
	if err != nil {
		return nil, err
	}

	var loaders []func(*config.LoadOptions) error
	if opts.Profile != "" {
		loaders = append(loaders, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithAPI(client, target), nil
}

// NewWithAPI собирает транспорт поверх готового клиента.
func NewWithAPI(api API, target Target) *Transport {
	return &Transport{api: api, target: target, now: time.Now}
}

// Target возвращает адрес бакета.
func (t *Transport) Target() Target {
	return t.target
}

// Send кладёт чанк отдельным объектом.
func (t *Transport) Send(ctx context.Context, chunk models.ChunkPayload) error {
	sum := sha256.Sum256(chunk.Data)
	_, err := t.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.target.Bucket),
		Key:           aws.String(t.target.chunkKey(chunk.TransferID, chunk.Index)),
		Body:          bytes.NewReader(chunk.Data),
		ContentLength: aws.Int64(int64(len(chunk.Data))),
		ContentType:   aws.String("application/octet-stream"),
		Metadata: map[string]string{
			metaChecksum:    hex.EncodeToString(sum[:]),
			metaTotalChunks: strconv.Itoa(chunk.TotalChunks),
		},
	})
	if err != nil {
		return wrap("send", chunk.TransferID, chunk.Index, err)
	}
	return nil
}

// Finalize проверяет, что все чанки на месте и их суммарный размер совпадает,
// затем записывает meta.json. Повторная финализация с теми же параметрами успешна.
func (t *Transport) Finalize(ctx context.Context, fin models.FinalizeRequest) error {
	if existing, err := t.GetMeta(ctx, fin.TransferID); err == nil {
		if existing.TotalChunks == fin.TotalChunks && existing.Size == fin.Size {
			return nil
		}
		return models.NewTransportError("finalize", fin.TransferID, -1, 0,
			fmt.Errorf("%w: finalized with different parameters", models.ErrAlreadyFinalized))
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	var stored int64
	for i := 0; i < fin.TotalChunks; i++ {
		head, err := t.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(t.target.Bucket),
			Key:    aws.String(t.target.chunkKey(fin.TransferID, i)),
		})
		if err != nil {
			if isNotFound(err) {
				return models.NewTransportError("finalize", fin.TransferID, -1, 0,
					fmt.Errorf("%w: chunk %d is missing", models.ErrIncomplete, i))
			}
			return wrap("finalize", fin.TransferID, i, err)
		}
		stored += aws.ToInt64(head.ContentLength)
	}
	if stored != fin.Size {
		return models.NewTransportError("finalize", fin.TransferID, -1, 0,
			fmt.Errorf("%w: size mismatch: want %d, stored %d", models.ErrIncomplete, fin.Size, stored))
	}

	total := fin.TotalChunks
	body, err := json.Marshal(chunkproto.MetaBody{
		TransferID:  fin.TransferID,
		TotalChunks: &total,
		FileName:    fin.FileName,
		ContentType: fin.ContentType,
		Size:        fin.Size,
		Finalized:   true,
		CreatedAt:   t.now().UTC(),
	})
	if err != nil {
		return models.NewTransportError("finalize", fin.TransferID, -1, 0, err)
	}

	_, err = t.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.target.Bucket),
		Key:           aws.String(t.target.metaKey(fin.TransferID)),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return wrap("finalize", fin.TransferID, -1, err)
	}
	return nil
}

// Receive читает чанк и сверяет контрольную сумму из метаданных объекта.
func (t *Transport) Receive(ctx context.Context, transferID string, index int) ([]byte, error) {
	out, err := t.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.target.Bucket),
		Key:    aws.String(t.target.chunkKey(transferID, index)),
	})
	if err != nil {
		return nil, wrap("receive", transferID, index, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrap("receive", transferID, index, err)
	}

	if want := out.Metadata[metaChecksum]; want != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != want {
			return nil, models.NewTransportError("receive", transferID, index, 0,
				fmt.Errorf("sha256 mismatch: want %s, got %s", want, got))
		}
	}
	return data, nil
}

// GetMeta читает meta.json. До финализации передача считается несуществующей.
func (t *Transport) GetMeta(ctx context.Context, transferID string) (models.FileMeta, error) {
	out, err := t.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.target.Bucket),
		Key:    aws.String(t.target.metaKey(transferID)),
	})
	if err != nil {
		return models.FileMeta{}, wrap("meta", transferID, -1, err)
	}
	defer out.Body.Close()

	var body chunkproto.MetaBody
	if err = json.NewDecoder(out.Body).Decode(&body); err != nil {
		return models.FileMeta{}, models.NewTransportError("meta", transferID, -1, 0, err)
	}

	meta := models.FileMeta{
		TransferID:  transferID,
		TotalChunks: -1,
		FileName:    body.FileName,
		ContentType: body.ContentType,
		Size:        body.Size,
		Finalized:   body.Finalized,
		CreatedAt:   body.CreatedAt,
	}
	if body.TotalChunks != nil {
		meta.TotalChunks = *body.TotalChunks
	}
	return meta, nil
}

func wrap(op, transferID string, index int, err error) error {
	if isNotFound(err) {
		err = fmt.Errorf("%w: %w", models.ErrNotFound, err)
	}
	return models.NewTransportError(op, transferID, index, 0, err)
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
