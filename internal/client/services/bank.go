package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/dmitrijs2005/minibank/internal/bankapi"
	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/dmitrijs2005/minibank/internal/filex"
	"github.com/dmitrijs2005/minibank/internal/netx"
)

// download is a test seam for netx.DownloadFromPresignedURL.
var download = netx.DownloadFromPresignedURL

// StatementFile is an exported statement and, when downloaded, its local
// path.
type StatementFile struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Path      string
}

// BankService runs the banking commands as the logged-in user.
type BankService interface {
	Balance(ctx context.Context) (string, error)
	Transfer(ctx context.Context, receiver, amount string) (*client.TransferResult, error)
	History(ctx context.Context, limit int) ([]bankapi.HistoryEntry, error)
	Statement(ctx context.Context, limit int, save bool) (*StatementFile, error)
}

type bankService struct {
	client        client.Client
	statementsDir string
}

func NewBankService(c client.Client, statementsDir string) BankService {
	return &bankService{client: c, statementsDir: statementsDir}
}

func (b *bankService) Balance(ctx context.Context) (string, error) {
	return b.client.Balance(ctx)
}

func (b *bankService) Transfer(ctx context.Context, receiver, amount string) (*client.TransferResult, error) {
	return b.client.Transfer(ctx, receiver, amount)
}

func (b *bankService) History(ctx context.Context, limit int) ([]bankapi.HistoryEntry, error) {
	return b.client.History(ctx, limit)
}

// Statement asks the server to export a statement. With save set the
// document is fetched from its presigned URL into the statements directory.
func (b *bankService) Statement(ctx context.Context, limit int, save bool) (*StatementFile, error) {
	st, err := b.client.Statement(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := &StatementFile{Key: st.Key, URL: st.URL, ExpiresAt: st.ExpiresAt}
	if !save {
		return out, nil
	}

	data, err := download(ctx, st.URL)
	if err != nil {
		return nil, fmt.Errorf("statement download error: %w", err)
	}

	dir, err := filex.EnsureDir(b.statementsDir)
	if err != nil {
		return nil, err
	}

	if out.Path, err = filex.WriteFile(dir, path.Base(st.Key), data); err != nil {
		return nil, err
	}
	return out, nil
}
