package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"imagulator/internal/delivery/dto"
	"imagulator/internal/infrastructure/storage"
	"imagulator/internal/segmentation"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoImageSource = errors.New("provide either file_path or image_url")
	ErrFetchFailed   = errors.New("failed to fetch image")
)

// maxFetchSize caps how much image data a job will pull from a URL (64 MB).
const maxFetchSize = 64 * 1024 * 1024

type JobUsecase interface {
	// Process fetches image bytes from the content store or a URL and runs
	// the segmentation step on them.
	Process(ctx context.Context, req *dto.ProcessRequest) (*dto.ProcessResponse, error)
}

type jobUsecase struct {
	log   *logrus.Logger
	store *storage.Store
	http  *http.Client
}

func NewJobUsecase(log *logrus.Logger, store *storage.Store) JobUsecase {
	return &jobUsecase{
		log:   log,
		store: store,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (u *jobUsecase) Process(ctx context.Context, req *dto.ProcessRequest) (*dto.ProcessResponse, error) {
	var (
		imageB64 string
		input    dto.ProcessInput
	)

	switch {
	case req.FilePath != "":
		b64, err := u.fetchStored(req.FilePath)
		if err != nil {
			return nil, err
		}
		imageB64 = b64
		input = dto.ProcessInput{Source: "storage", FilePath: req.FilePath}
	case req.ImageURL != "":
		b64, err := u.fetchURL(ctx, req.ImageURL)
		if err != nil {
			return nil, err
		}
		imageB64 = b64
		input = dto.ProcessInput{Source: "url", ImageURL: req.ImageURL}
	default:
		return nil, ErrNoImageSource
	}

	seg := segmentation.Segment(imageB64)
	return &dto.ProcessResponse{
		Input: input,
		Result: dto.ProcessResult{
			Width:   seg.Width,
			Height:  seg.Height,
			MaskB64: seg.MaskB64,
		},
	}, nil
}

func (u *jobUsecase) fetchStored(relPath string) (string, error) {
	f, err := u.store.Open(relPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (u *jobUsecase) fetchURL(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: remote returned %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
