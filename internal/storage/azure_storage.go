package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const blobHostSuffix = ".blob.core.windows.net"

// ErrForeignAccount indicates a blob URL that belongs to another storage account
var ErrForeignAccount = errors.New("blob belongs to a different storage account")

// AzureBlobFetcher implements ImageFetcher for blobs of one storage account
type AzureBlobFetcher struct {
	client  *azblob.Client
	account string
	limits  DecodeLimits
}

// NewAzureBlobFetcher authenticates against the account with a shared key
func NewAzureBlobFetcher(accountName, accountKey string, limits DecodeLimits) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, blobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &AzureBlobFetcher{client: client, account: strings.ToLower(accountName), limits: limits}, nil
}

// Account returns the storage account the fetcher is bound to
func (s *AzureBlobFetcher) Account() string {
	return s.account
}

func (s *AzureBlobFetcher) FetchImage(ctx context.Context, blobURL string) (image.Image, error) {
	containerName, blobName, err := blobLocation(blobURL, s.account)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentType != nil && !acceptableContentType(*resp.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedContentType, *resp.ContentType)
	}
	if s.limits.MaxBytes > 0 && resp.ContentLength != nil && *resp.ContentLength > s.limits.MaxBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrImageTooLarge, *resp.ContentLength)
	}

	img, _, err := DecodeImage(resp.Body, s.limits)
	return img, err
}

// IsBlobURL reports whether raw points at Azure Blob Storage
func IsBlobURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), blobHostSuffix)
}

// blobLocation splits https://<account>.blob.core.windows.net/<container>/<blob>
func blobLocation(blobURL, account string) (string, string, error) {
	if !IsBlobURL(blobURL) {
		return "", "", fmt.Errorf("invalid blob URL: %s", blobURL)
	}
	parts, err := azblob.ParseURL(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	host := strings.ToLower(parts.Host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host != account+blobHostSuffix {
		return "", "", fmt.Errorf("%w: %s", ErrForeignAccount, parts.Host)
	}
	if parts.ContainerName == "" || parts.BlobName == "" {
		return "", "", fmt.Errorf("invalid blob URL: container and blob name are required")
	}
	return parts.ContainerName, parts.BlobName, nil
}
