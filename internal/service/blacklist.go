package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"editflow.app/server/common/id"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

var (
	ErrInvalidWord        = errors.New("word must be a single non-blank token")
	ErrWordBlacklisted    = errors.New("word is already blacklisted")
	ErrWordNotBlacklisted = errors.New("word is not blacklisted")
	ErrRequestPending     = errors.New("a request for this word is already pending")
	ErrRequestNotFound    = errors.New("blacklist request not found")
	ErrRequestDecided     = errors.New("blacklist request was already decided")
)

type BlacklistService interface {
	// Words returns the current blacklist. Editing sessions snapshot it
	// once at start.
	Words(ctx context.Context) ([]string, error)
	Request(ctx context.Context, userID int64, word string) (*model.BlacklistRequest, error)
	ListPendingRequests(ctx context.Context) ([]model.BlacklistRequest, error)
	Approve(ctx context.Context, requestID int64) (*model.BlacklistRequest, error)
	RejectRequest(ctx context.Context, requestID int64) (*model.BlacklistRequest, error)
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
}

type blacklistService struct {
	txRunner  TxRunner
	blacklist store.BlacklistStore
}

func NewBlacklistService(txRunner TxRunner, blacklist store.BlacklistStore) BlacklistService {
	return &blacklistService{
		txRunner:  txRunner,
		blacklist: blacklist,
	}
}

func (s *blacklistService) Words(ctx context.Context) ([]string, error) {
	words, err := s.blacklist.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing blacklist: %w", err)
	}
	return words, nil
}

func (s *blacklistService) Request(ctx context.Context, userID int64, word string) (*model.BlacklistRequest, error) {
	word, err := normalizeWord(word)
	if err != nil {
		return nil, err
	}

	exists, err := s.blacklist.HasWord(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("checking blacklist: %w", err)
	}
	if exists {
		return nil, ErrWordBlacklisted
	}

	req := &model.BlacklistRequest{
		ID:     id.New(),
		UserID: userID,
		Word:   word,
		Status: model.BlacklistRequestPending,
	}
	if err := s.blacklist.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("creating blacklist request: %w", err)
	}

	slog.InfoContext(ctx, "blacklist word requested", "request_id", req.ID, "word", word)
	return req, nil
}

func (s *blacklistService) ListPendingRequests(ctx context.Context) ([]model.BlacklistRequest, error) {
	return s.blacklist.ListPendingRequests(ctx)
}

func (s *blacklistService) Approve(ctx context.Context, requestID int64) (*model.BlacklistRequest, error) {
	var approved *model.BlacklistRequest
	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		approved, err = decideRequest(ctx, sp.Blacklist(), requestID, model.BlacklistRequestApproved)
		if err != nil {
			return err
		}
		if err := sp.Blacklist().AddWord(ctx, approved.Word); err != nil {
			return fmt.Errorf("adding blacklist word: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "blacklist request approved", "request_id", requestID, "word", approved.Word)
	return approved, nil
}

func (s *blacklistService) RejectRequest(ctx context.Context, requestID int64) (*model.BlacklistRequest, error) {
	rejected, err := decideRequest(ctx, s.blacklist, requestID, model.BlacklistRequestRejected)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "blacklist request rejected", "request_id", requestID)
	return rejected, nil
}

func (s *blacklistService) Add(ctx context.Context, word string) error {
	word, err := normalizeWord(word)
	if err != nil {
		return err
	}
	exists, err := s.blacklist.HasWord(ctx, word)
	if err != nil {
		return fmt.Errorf("checking blacklist: %w", err)
	}
	if exists {
		return ErrWordBlacklisted
	}
	if err := s.blacklist.AddWord(ctx, word); err != nil {
		return fmt.Errorf("adding blacklist word: %w", err)
	}
	slog.InfoContext(ctx, "blacklist word added", "word", word)
	return nil
}

func (s *blacklistService) Remove(ctx context.Context, word string) error {
	word, err := normalizeWord(word)
	if err != nil {
		return err
	}
	if err := s.blacklist.RemoveWord(ctx, word); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrWordNotBlacklisted
		}
		return fmt.Errorf("removing blacklist word: %w", err)
	}
	slog.InfoContext(ctx, "blacklist word removed", "word", word)
	return nil
}

func decideRequest(ctx context.Context, blacklist store.BlacklistStore, requestID int64, status model.BlacklistRequestStatus) (*model.BlacklistRequest, error) {
	decided, err := blacklist.DecideRequest(ctx, requestID, status)
	if err == nil {
		return decided, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("deciding blacklist request: %w", err)
	}
	if _, getErr := blacklist.GetRequest(ctx, requestID); getErr != nil {
		if errors.Is(getErr, store.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("getting blacklist request: %w", getErr)
	}
	return nil, ErrRequestDecided
}

// normalizeWord lowercases and trims word. Blacklist entries are single
// words; the censor matches on word boundaries.
func normalizeWord(word string) (string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || strings.ContainsFunc(word, unicode.IsSpace) {
		return "", ErrInvalidWord
	}
	return word, nil
}
