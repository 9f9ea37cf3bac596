package memory

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
func (s *Store) AddDictInfos(_ context.Context, ds []entry.DictInfo) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(ds))
	for i, d := range ds {
		rs[i] = result(d.ID, s.addDictInfo(d))
	}
	return rs
}

// UpdateDictInfos renames existing dictionaries. An empty name is ignored.
func (s *Store) UpdateDictInfos(_ context.Context, ds []entry.DictInfo) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(ds))
	for i, d := range ds {
		rs[i] = result(d.ID, s.updateDictInfo(d))
	}
	return rs
}

// DeleteDictInfos removes dictionaries that no longer own entries.
func (s *Store) DeleteDictInfos(_ context.Context, ids []string) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(ids))
	for i, id := range ids {
		rs[i] = result(id, s.deleteDictInfo(id))
	}
	return rs
}

// AddEntries adds entries. Numeric ids are converted by the dictionary's
// id policy before the uniqueness check.
func (s *Store) AddEntries(_ context.Context, es []entry.Input) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(es))
	for i, in := range es {
		id, err := s.addEntry(in)
		if id == "" {
			id = in.ID.String()
		}
		rs[i] = result(id, err)
	}
	return rs
}

// UpdateEntries patches existing entries.
func (s *Store) UpdateEntries(_ context.Context, us []entry.Update) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(us))
	for i, u := range us {
		rs[i] = result(u.ID, s.updateEntry(u))
	}
	return rs
}

// DeleteEntries removes entries by id.
func (s *Store) DeleteEntries(_ context.Context, ids []string) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	rs := make([]batch.Result, len(ids))
	for i, id := range ids {
		var err error
		if _, ok := s.entries[id]; ok {
			delete(s.entries, id)
		} else {
			err = errEntryNotFound(id)
		}
		rs[i] = result(id, err)
	}
	return rs
}

// AddRefTerms adds referring terms. Re-adding a term is not an error.
func (s *Store) AddRefTerms(_ context.Context, terms []string) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := make([]batch.Result, len(terms))
	for i, t := range terms {
		rs[i] = result(t, s.addRefTerm(t))
	}
	return rs
}

// DeleteRefTerms removes referring terms, matched exactly.
func (s *Store) DeleteRefTerms(_ context.Context, terms []string) []batch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := make([]batch.Result, len(terms))
	for i, t := range terms {
		var err error
		if !s.refs.remove(t) {
			err = fmt.Errorf("refTerm '%s': %w", t, domain.ErrNotFound)
		}
		rs[i] = result(t, err)
	}
	return rs
}

// AddDictionaryData loads dictionaries with their entries and then referring
// terms in one call. Existing dictionaries and entries are updated instead
// of added. Every failure is collected; the rest of the data still loads.
func (s *Store) AddDictionaryData(_ context.Context, d entry.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reindex()

	var errs []error
	for _, dd := range d.Dictionaries {
		info := dd.Info()
		if err := s.addDictInfo(info); err != nil {
			if uerr := s.updateDictInfo(info); uerr != nil {
				errs = append(errs, err)
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
			if _, err := s.addEntry(in); err != nil {
				if !errors.Is(err, domain.ErrAlreadyExists) {
					errs = append(errs, err)
					continue
				}
				if uerr := s.updateEntry(upsertFromInput(in)); uerr != nil {
					errs = append(errs, uerr)
				}
			}
		}
	}
	for _, t := range d.RefTerms {
		if err := s.addRefTerm(t); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Debug("dictionary data loaded",
		zap.Int("dictionaries", len(s.dicts)),
		zap.Int("entries", len(s.entries)),
		zap.Int("ref_terms", s.refs.count()),
		zap.Int("errors", len(errs)),
	)
	return errors.Join(errs...)
}

func (s *Store) addDictInfo(d entry.DictInfo) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, ok := s.dicts[d.ID]; ok {
		return fmt.Errorf("dictInfo '%s': %w", d.ID, domain.ErrAlreadyExists)
	}
	s.dicts[d.ID] = entry.DictInfo{ID: d.ID, Name: d.Name}
	return nil
}

func (s *Store) updateDictInfo(d entry.DictInfo) error {
	cur, ok := s.dicts[d.ID]
	if !ok {
		return errDictInfoNotFound(d.ID)
	}
	if d.Name != "" {
		cur.Name = d.Name
	}
	s.dicts[d.ID] = cur
	return nil
}

func (s *Store) deleteDictInfo(id string) error {
	if _, ok := s.dicts[id]; !ok {
		return errDictInfoNotFound(id)
	}
	if s.hasEntriesIn(id) {
		return fmt.Errorf("dictInfo '%s': %w", id, domain.ErrHasEntries)
	}
	delete(s.dicts, id)
	return nil
}

// addEntry returns the final string id, when one could be determined.
func (s *Store) addEntry(in entry.Input) (string, error) {
	if in.ID.IsZero() || in.DictID == "" || len(in.Terms) == 0 {
		_, err := entry.CanonicalizeEntry(in)
		return "", err
	}
	if _, ok := s.dicts[in.DictID]; !ok {
		return "", errNoSuchDict(in.DictID)
	}
	in = entry.ResolveID(in, s.policyFor(in.DictID))
	id := in.ID.String()
	if _, ok := s.entries[id]; ok {
		return id, fmt.Errorf("entry '%s': %w", id, domain.ErrAlreadyExists)
	}
	e, err := entry.CanonicalizeEntry(in)
	if err != nil {
		return id, err
	}
	s.entries[id] = e
	return id, nil
}

func (s *Store) updateEntry(u entry.Update) error {
	cur, ok := s.entries[u.ID]
	if !ok {
		return errEntryNotFound(u.ID)
	}
	if u.DictID != "" {
		if _, ok := s.dicts[u.DictID]; !ok {
			return errNoSuchDict(u.DictID)
		}
	}
	next, err := u.Apply(cur)
	if err != nil {
		return fmt.Errorf("entry '%s': %w", u.ID, err)
	}
	s.entries[u.ID] = next
	return nil
}

func (s *Store) addRefTerm(t string) error {
	if t == "" {
		return fmt.Errorf("empty refTerm: %w", domain.ErrInvalidTerm)
	}
	s.refs.add(t)
	return nil
}

// upsertFromInput turns a re-loaded entry into an update: its terms are
// added or replaced, descr and z merged.
func upsertFromInput(in entry.Input) entry.Update {
	return entry.Update{
		ID:     in.ID.String(),
		DictID: in.DictID,
		Descr:  in.Descr,
		Terms:  in.Terms,
		Z:      in.Z,
	}
}

func result(key string, err error) batch.Result {
	if err != nil {
		return batch.Fail(key, err)
	}
	return batch.OK(key)
}

func errDictInfoNotFound(id string) error {
	return fmt.Errorf("dictInfo '%s': %w", id, domain.ErrNotFound)
}

func errEntryNotFound(id string) error {
	return fmt.Errorf("entry '%s': %w", id, domain.ErrNotFound)
}

func errNoSuchDict(id string) error {
	return fmt.Errorf("entry is linked to non-existent dictID '%s': %w", id, domain.ErrDictNotFound)
}
