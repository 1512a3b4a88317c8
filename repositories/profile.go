package repositories

import (
	"chat-core/contract"
	"chat-core/domain"
	pb "chat-core/proto/storage"
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

var _ contract.ProfileDirectory = (*Repository)(nil)

func profileKey(userID string) string { return "profile:" + userID }

func (r *Repository) UpsertProfile(ctx context.Context, p domain.Profile) error {
	return r.WithTx(ctx, func(txn *badger.Txn) error {
		return setProto(txn, profileKey(p.UserID), toPbProfile(p))
	})
}

// Profiles loads the known profiles among userIDs in one snapshot.
// Unknown users are simply absent from the result.
func (r *Repository) Profiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	res := make(map[string]domain.Profile, len(userIDs))
	err := r.View(ctx, func(txn *badger.Txn) error {
		for _, id := range userIDs {
			var p pb.Profile
			err := getProto(txn, profileKey(id), &p)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			res[id] = fromPbProfile(&p)
		}
		return nil
	})
	return res, err
}

func (r *Repository) DeleteProfile(txn *badger.Txn, userID string) error {
	return txn.Delete([]byte(profileKey(userID)))
}
