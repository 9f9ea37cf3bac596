package rediskv

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/batch"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
)

// AddDictInfos adds dictionaries. Ids must be new; id and name are required.
func (s *Store) AddDictInfos(ctx context.Context, ds []entry.DictInfo) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(ds))
	for i, d := range ds {
		rs[i] = result(d.ID, s.addDictInfo(ctx, d))
	}
	return rs
}

// UpdateDictInfos renames existing dictionaries.
func (s *Store) UpdateDictInfos(ctx context.Context, ds []entry.DictInfo) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(ds))
	for i, d := range ds {
		rs[i] = result(d.ID, s.updateDictInfo(ctx, d))
	}
	return rs
}

// DeleteDictInfos removes dictionaries that no longer own entries.
func (s *Store) DeleteDictInfos(ctx context.Context, ids []string) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(ids))
	for i, id := range ids {
		rs[i] = result(id, s.deleteDictInfo(ctx, id))
	}
	return rs
}

// AddEntries adds entries, converting numeric ids with the id policy.
func (s *Store) AddEntries(ctx context.Context, es []entry.Input) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(es))
	for i, in := range es {
		id, err := s.addEntry(ctx, in)
		if id == "" {
			id = in.ID.String()
		}
		rs[i] = result(id, err)
	}
	return rs
}

// UpdateEntries patches existing entries.
func (s *Store) UpdateEntries(ctx context.Context, us []entry.Update) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(us))
	for i, u := range us {
		rs[i] = result(u.ID, s.updateEntry(ctx, u))
	}
	return rs
}

// DeleteEntries removes entries by id.
func (s *Store) DeleteEntries(ctx context.Context, ids []string) []batch.Result {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	rs := make([]batch.Result, len(ids))
	for i, id := range ids {
		rs[i] = result(id, s.deleteEntry(ctx, id))
	}
	return rs
}

// AddRefTerms adds referring terms.
func (s *Store) AddRefTerms(ctx context.Context, terms []string) []batch.Result {
	rs := make([]batch.Result, len(terms))
	for i, t := range terms {
		rs[i] = result(t, s.addRefTerm(ctx, t))
	}
	return rs
}

// DeleteRefTerms removes referring terms, matched exactly.
func (s *Store) DeleteRefTerms(ctx context.Context, terms []string) []batch.Result {
	rs := make([]batch.Result, len(terms))
	for i, t := range terms {
		n, err := s.kv.SRem(ctx, s.keys.refTerms(), t)
		if err == nil && n == 0 {
			err = fmt.Errorf("refTerm '%s': %w", t, domain.ErrNotFound)
		}
		rs[i] = result(t, err)
	}
	return rs
}

// AddDictionaryData loads dictionaries with their entries, then referring
// terms. Existing dictionaries and entries are updated. Failures are
// collected and the rest still loads.
func (s *Store) AddDictionaryData(ctx context.Context, d entry.Data) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error
	loaded := 0
	for _, dd := range d.Dictionaries {
		info := dd.Info()
		if err := s.addDictInfo(ctx, info); err != nil {
			if !errors.Is(err, domain.ErrAlreadyExists) {
				errs = append(errs, err)
				continue
			}
			if err := s.updateDictInfo(ctx, info); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		for _, in := range dd.Entries {
			if in.DictID == "" {
				in.DictID = dd.ID
			} else if in.DictID != dd.ID {
				errs = append(errs, fmt.Errorf("entry '%s' under dictID '%s': %w",
					in.ID, dd.ID, domain.ErrDictMismatch))
				continue
			}
			in = entry.ResolveID(in, s.policyFor(in.DictID))
			_, err := s.addEntry(ctx, in)
			if errors.Is(err, domain.ErrAlreadyExists) {
				err = s.updateEntry(ctx, entry.Update{
					ID: in.ID.String(), DictID: in.DictID, Descr: in.Descr, Terms: in.Terms, Z: in.Z,
				})
			}
			if err != nil {
				errs = append(errs, err)
				continue
			}
			loaded++
		}
	}
	for _, t := range d.RefTerms {
		if err := s.addRefTerm(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Debug("dictionary data stored",
		zap.Int("dictionaries", len(d.Dictionaries)),
		zap.Int("entries", loaded),
		zap.Int("ref_terms", len(d.RefTerms)),
		zap.Int("errors", len(errs)),
	)
	return errors.Join(errs...)
}

func (s *Store) addDictInfo(ctx context.Context, d entry.DictInfo) error {
	if err := d.Validate(); err != nil {
		return err
	}
	exists, err := s.kv.Exists(ctx, s.keys.dict(d.ID))
	if err != nil {
		return fmt.Errorf("check dictInfo %s: %w", d.ID, err)
	}
	if exists {
		return fmt.Errorf("dictInfo '%s': %w", d.ID, domain.ErrAlreadyExists)
	}
	return s.putDictInfo(ctx, d)
}

func (s *Store) updateDictInfo(ctx context.Context, d entry.DictInfo) error {
	cur, ok, err := s.getDictInfo(ctx, d.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dictInfo '%s': %w", d.ID, domain.ErrNotFound)
	}
	if d.Name != "" {
		cur.Name = d.Name
	}
	return s.putDictInfo(ctx, cur)
}

func (s *Store) putDictInfo(ctx context.Context, d entry.DictInfo) error {
	raw, err := encodeDictInfo(d)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.keys.dict(d.ID), raw); err != nil {
		return fmt.Errorf("store dictInfo %s: %w", d.ID, err)
	}
	if err := s.kv.SAdd(ctx, s.keys.dicts(), d.ID); err != nil {
		return fmt.Errorf("index dictInfo %s: %w", d.ID, err)
	}
	return nil
}

func (s *Store) deleteDictInfo(ctx context.Context, id string) error {
	exists, err := s.kv.Exists(ctx, s.keys.dict(id))
	if err != nil {
		return fmt.Errorf("check dictInfo %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("dictInfo '%s': %w", id, domain.ErrNotFound)
	}
	members, err := s.kv.SMembers(ctx, s.keys.dictEntries(id))
	if err != nil {
		return fmt.Errorf("list entries of %s: %w", id, err)
	}
	if len(members) > 0 {
		return fmt.Errorf("dictInfo '%s': %w", id, domain.ErrHasEntries)
	}
	if err := s.kv.Del(ctx, s.keys.dict(id), s.keys.dictEntries(id)); err != nil {
		return fmt.Errorf("delete dictInfo %s: %w", id, err)
	}
	if _, err := s.kv.SRem(ctx, s.keys.dicts(), id); err != nil {
		return fmt.Errorf("unindex dictInfo %s: %w", id, err)
	}
	return nil
}

func (s *Store) addEntry(ctx context.Context, in entry.Input) (string, error) {
	if in.ID.IsZero() || in.DictID == "" || len(in.Terms) == 0 {
		_, err := entry.CanonicalizeEntry(in)
		return "", err
	}
	if _, ok, err := s.getDictInfo(ctx, in.DictID); err != nil {
		return "", err
	} else if !ok {
		return "", errNoSuchDict(in.DictID)
	}
	in = entry.ResolveID(in, s.policyFor(in.DictID))
	id := in.ID.String()

	exists, err := s.kv.Exists(ctx, s.keys.entry(id))
	if err != nil {
		return id, fmt.Errorf("check entry %s: %w", id, err)
	}
	if exists {
		return id, fmt.Errorf("entry '%s': %w", id, domain.ErrAlreadyExists)
	}
	e, err := entry.CanonicalizeEntry(in)
	if err != nil {
		return id, err
	}
	return id, s.putEntry(ctx, e, "")
}

func (s *Store) updateEntry(ctx context.Context, u entry.Update) error {
	cur, ok, err := s.getEntry(ctx, u.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entry '%s': %w", u.ID, domain.ErrNotFound)
	}
	if u.DictID != "" && u.DictID != cur.DictID {
		if _, ok, err := s.getDictInfo(ctx, u.DictID); err != nil {
			return err
		} else if !ok {
			return errNoSuchDict(u.DictID)
		}
	}
	next, err := u.Apply(cur)
	if err != nil {
		return fmt.Errorf("entry '%s': %w", u.ID, err)
	}
	prevDict := ""
	if next.DictID != cur.DictID {
		prevDict = cur.DictID
	}
	return s.putEntry(ctx, next, prevDict)
}

// putEntry writes e and its set memberships. prevDict, when set, is the
// dictionary the entry moves away from.
func (s *Store) putEntry(ctx context.Context, e entry.Entry, prevDict string) error {
	raw, err := encodeEntry(e)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.keys.entry(e.ID), raw); err != nil {
		return fmt.Errorf("store entry %s: %w", e.ID, err)
	}
	if err := s.kv.SAdd(ctx, s.keys.entries(), e.ID); err != nil {
		return fmt.Errorf("index entry %s: %w", e.ID, err)
	}
	if err := s.kv.SAdd(ctx, s.keys.dictEntries(e.DictID), e.ID); err != nil {
		return fmt.Errorf("index entry %s: %w", e.ID, err)
	}
	if prevDict != "" {
		if _, err := s.kv.SRem(ctx, s.keys.dictEntries(prevDict), e.ID); err != nil {
			return fmt.Errorf("unindex entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *Store) deleteEntry(ctx context.Context, id string) error {
	cur, ok, err := s.getEntry(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entry '%s': %w", id, domain.ErrNotFound)
	}
	if err := s.kv.Del(ctx, s.keys.entry(id)); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if _, err := s.kv.SRem(ctx, s.keys.entries(), id); err != nil {
		return fmt.Errorf("unindex entry %s: %w", id, err)
	}
	if _, err := s.kv.SRem(ctx, s.keys.dictEntries(cur.DictID), id); err != nil {
		return fmt.Errorf("unindex entry %s: %w", id, err)
	}
	return nil
}

func (s *Store) addRefTerm(ctx context.Context, t string) error {
	if t == "" {
		return fmt.Errorf("empty refTerm: %w", domain.ErrInvalidTerm)
	}
	if err := s.kv.SAdd(ctx, s.keys.refTerms(), t); err != nil {
		return fmt.Errorf("add refTerm %s: %w", t, err)
	}
	return nil
}

func result(key string, err error) batch.Result {
	if err != nil {
		return batch.Fail(key, err)
	}
	return batch.OK(key)
}

func errNoSuchDict(id string) error {
	return fmt.Errorf("entry is linked to non-existent dictID '%s': %w", id, domain.ErrDictNotFound)
}
