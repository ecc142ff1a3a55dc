package envfile

import "fmt"

// Migrate renames keys while preserving their literal values. A rename is
// skipped when the source is absent or the target already exists, so repeated
// runs are harmless. It returns the "old -> new" renames actually applied.
func (s *Store) Migrate(renames map[string]string) ([]string, error) {
	var applied []string
	for from, to := range renames {
		has, err := s.Has(from)
		if err != nil {
			return applied, err
		}
		if !has {
			continue
		}
		targetExists, err := s.Has(to)
		if err != nil {
			return applied, err
		}
		if targetExists {
			continue
		}
		literal, err := s.GetLiteral(from)
		if err != nil {
			return applied, err
		}
		if err := s.SetLiteral(to, literal); err != nil {
			return applied, err
		}
		if err := s.Unset(from); err != nil {
			return applied, err
		}
		applied = append(applied, fmt.Sprintf("%s -> %s", from, to))
	}
	return applied, nil
}
