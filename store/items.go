package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type (
	Item struct {
		ID        string `json:"id"`
		Name      string `json:"itemName"`
		BoxNumber int    `json:"boxNumber"`
	}
)

var (
	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// AddItem records that an item named name was packed into box
func (s *Store) AddItem(ctx context.Context, name string, box int) (Item, error) {
	if len(strings.TrimSpace(name)) == 0 {
		return Item{}, InvalidItem{Reason: "item name cannot be empty"}
	} else if box <= 0 {
		return Item{}, InvalidItem{Reason: "box number must be positive"}
	}
	item := Item{ID: uuid.NewString(), Name: name, BoxNumber: box}
	s.boxLock.Lock()
	defer s.boxLock.Unlock()
	_, err := s.db.ExecContext(ctx, `insert into items(item_id, item_name, box_number, search_name) values ($1, $2, $3, $4)`,
		item.ID, item.Name, item.BoxNumber, searchName(item.Name))
	if err != nil {
		return Item{}, fmt.Errorf("unable to insert item %v into box %v, cause %w", name, box, err)
	}
	s.boxes.forget(box)
	return item, nil
}

// ItemsInBox lists the content of box ordered by item name
func (s *Store) ItemsInBox(ctx context.Context, box int) ([]Item, error) {
	s.boxLock.RLock()
	defer s.boxLock.RUnlock()
	if items, ok := s.boxes.get(box); ok {
		return items, nil
	}
	rows, err := s.db.QueryContext(ctx, `select item_id, item_name, box_number from items
	where box_number = $1
	order by item_name asc`, box)
	if err != nil {
		return nil, fmt.Errorf("unable to list box %v, cause %w", box, err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("unable to list box %v, cause %w", box, err)
	}
	s.boxes.set(box, items)
	return items, nil
}

// FindItems returns every item whose name contains fragment, ignoring case
func (s *Store) FindItems(ctx context.Context, fragment string) ([]Item, error) {
	pattern := "%" + likeEscaper.Replace(searchName(fragment)) + "%"
	rows, err := s.db.QueryContext(ctx, `select item_id, item_name, box_number from items
	where search_name like $1 escape '\'
	order by item_name asc`, pattern)
	if err != nil {
		return nil, fmt.Errorf("unable to search items matching %v, cause %w", fragment, err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("unable to search items matching %v, cause %w", fragment, err)
	}
	return items, nil
}

// searchName is what FindItems matches against. It is folded here because
// sqlite's lower() only handles ascii.
func searchName(name string) string {
	return strings.ToLower(name)
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	out := []Item{}
	for rows.Next() {
		var it Item
		err := rows.Scan(&it.ID, &it.Name, &it.BoxNumber)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
