package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross references between records.
// Every failure wraps ErrInvalidInput and names the offending record.
//
//gocyclo:ignore
func (r *Roster) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidInput, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	blocks := make(map[string]TimeBlock, len(r.TimeBlocks))
	ranks := make(map[string]string)
	for _, b := range r.TimeBlocks {
		if _, dup := blocks[b.ID]; dup {
			return fmt.Errorf("%w: duplicate time block %s", ErrInvalidInput, b.ID)
		}
		blocks[b.ID] = b
		key := fmt.Sprintf("%s#%d", b.Day, b.Rank)
		if other, dup := ranks[key]; dup {
			return fmt.Errorf("%w: time blocks %s and %s share rank %d", ErrInvalidInput, other, b.ID, b.Rank)
		}
		ranks[key] = b.ID
	}

	divisions := make(map[string]struct{}, len(r.Divisions))
	for _, d := range r.Divisions {
		if _, dup := divisions[d.ID]; dup {
			return fmt.Errorf("%w: duplicate division %s", ErrInvalidInput, d.ID)
		}
		divisions[d.ID] = struct{}{}
		for _, tb := range d.TimeBlocks {
			if _, ok := blocks[tb]; !ok {
				return fmt.Errorf("%w: division %s references unknown time block %s", ErrInvalidInput, d.ID, tb)
			}
		}
	}

	players := make(map[string]struct{}, len(r.Players))
	for _, p := range r.Players {
		if _, dup := players[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidInput, p.ID)
		}
		players[p.ID] = struct{}{}
		if _, ok := divisions[p.Division]; !ok {
			return fmt.Errorf("%w: player %s references unknown division %s", ErrInvalidInput, p.ID, p.Division)
		}
		for _, tb := range p.Demands {
			if _, ok := blocks[tb]; !ok {
				return fmt.Errorf("%w: player %s demands unknown time block %s", ErrInvalidInput, p.ID, tb)
			}
		}
	}

	slots := make(map[string]struct{}, len(r.Slots))
	for _, s := range r.Slots {
		if _, dup := slots[s.ID]; dup {
			return fmt.Errorf("%w: duplicate slot %s", ErrInvalidInput, s.ID)
		}
		slots[s.ID] = struct{}{}
		if _, ok := blocks[s.TimeBlock]; !ok {
			return fmt.Errorf("%w: slot %s references unknown time block %s", ErrInvalidInput, s.ID, s.TimeBlock)
		}
	}

	portions := make(map[string]struct{}, len(r.Portions))
	owner := make(map[string]string)
	for _, dp := range r.Portions {
		if _, dup := portions[dp.ID]; dup {
			return fmt.Errorf("%w: duplicate day portion %s", ErrInvalidInput, dp.ID)
		}
		portions[dp.ID] = struct{}{}
		for _, tb := range dp.TimeBlocks {
			if _, ok := blocks[tb]; !ok {
				return fmt.Errorf("%w: day portion %s references unknown time block %s", ErrInvalidInput, dp.ID, tb)
			}
			if other, taken := owner[tb]; taken {
				return fmt.Errorf("%w: time block %s belongs to day portions %s and %s", ErrInvalidInput, tb, other, dp.ID)
			}
			owner[tb] = dp.ID
		}
	}

	if len(r.Portions) == 0 {
		for _, dp := range r.EffectivePortions() {
			portions[dp.ID] = struct{}{}
		}
	}

	seen := make(map[[2]string]struct{}, len(r.Preferences))
	for _, pref := range r.Preferences {
		if _, ok := players[pref.Player]; !ok {
			return fmt.Errorf("%w: preference references unknown player %s", ErrInvalidInput, pref.Player)
		}
		if _, ok := portions[pref.Portion]; !ok {
			return fmt.Errorf("%w: preference of player %s references unknown day portion %s", ErrInvalidInput, pref.Player, pref.Portion)
		}
		key := [2]string{pref.Player, pref.Portion}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: player %s has more than one preference for day portion %s", ErrInvalidInput, pref.Player, pref.Portion)
		}
		seen[key] = struct{}{}
	}
	return nil
}
