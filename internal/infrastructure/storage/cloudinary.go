package storage

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
)

// CloudinaryStore backs the document object store. Locators are cloudinary
// public ids of the form {ownerUserID}/{docType}/{docID}.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Exists maps a storage 404 to (false, nil) rather than an error.
func (s *CloudinaryStore) Exists(ctx context.Context, locator string) (bool, error) {
	res, err := s.cld.Admin.Asset(ctx, admin.AssetParams{PublicID: locator})
	if err != nil {
		return false, err
	}
	if res.Error.Message != "" {
		if strings.Contains(strings.ToLower(res.Error.Message), "not found") {
			return false, nil
		}
		return false, errors.New(res.Error.Message)
	}
	return res.PublicID != "", nil
}

// SignUpload returns the signed parameter set a client needs to upload
// directly against the given locator.
func (s *CloudinaryStore) SignUpload(ctx context.Context, locator string) (map[string]string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := url.Values{}
	params.Set("public_id", locator)
	params.Set("timestamp", timestamp)

	signature, err := api.SignParameters(params, s.cld.Config.Cloud.APISecret)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"public_id": locator,
		"timestamp": timestamp,
		"signature": signature,
		"api_key":   s.cld.Config.Cloud.APIKey,
	}, nil
}
