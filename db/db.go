package db

import (
	"fmt"
	"strconv"

	"github.com/supabase-community/postgrest-go"

	"github.com/lucianomirandaGherzoni/api-crud-berlini/config"
	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

const (
	productsTable = "products"
	saucesTable   = "sauces"
)

// DBService talks to the managed backend (PostgREST row API plus the storage
// API) on behalf of the rest of the application. It is constructed once in
// main and handed to the HTTP layer; it keeps no state between calls, every
// read goes back to the backend.
type DBService struct {
	rest   *postgrest.Client
	store  objectStore
	bucket string
}

// NewDBService builds the backend clients from the given configuration.
func NewDBService(cfg config.Config) *DBService {
	headers := map[string]string{
		"apikey":        cfg.ServiceKey,
		"Authorization": "Bearer " + cfg.ServiceKey,
	}
	return &DBService{
		rest:   postgrest.NewClient(cfg.SupabaseURL+"/rest/v1", "public", headers),
		store:  newSupabaseStore(cfg),
		bucket: cfg.Bucket,
	}
}

// productRow is a product without its backend-assigned ID, for inserts and
// full-row updates.
type productRow struct {
	Name     string  `json:"name"`
	Detail   string  `json:"detail"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageRef string  `json:"image_ref,omitempty"`
	Category string  `json:"category"`
}

func productRowFrom(in m.ProductInput) productRow {
	row := productRow{
		Name:     *in.Name,
		Detail:   *in.Detail,
		Price:    in.Price.Value,
		Stock:    int(in.Stock.Value),
		Category: *in.Category,
	}
	if in.ImageRef != nil {
		row.ImageRef = *in.ImageRef
	}
	return row
}

type sauceRow struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func sauceRowFrom(in m.SauceInput) sauceRow {
	return sauceRow{
		Name:  *in.Name,
		Price: in.Price.Value,
		Stock: int(in.Stock.Value),
	}
}

// FindAllProducts returns every product ordered by ID ascending. An empty
// slice is a normal result, not an error.
func (s *DBService) FindAllProducts() ([]m.Product, error) {
	var products []m.Product
	_, err := s.rest.From(productsTable).
		Select("*", "", false).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&products)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

// FindProductByID reports an absent row as (zero, false, nil), never as an
// error.
func (s *DBService) FindProductByID(id int) (m.Product, bool, error) {
	var products []m.Product
	_, err := s.rest.From(productsTable).
		Select("*", "", false).
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&products)
	if err != nil {
		return m.Product{}, false, fmt.Errorf("select product %d: %w", id, err)
	}
	if len(products) == 0 {
		return m.Product{}, false, nil
	}
	return products[0], true, nil
}

// InsertProduct persists a new row and returns it with its assigned ID.
func (s *DBService) InsertProduct(in m.ProductInput) (m.Product, error) {
	var products []m.Product
	_, err := s.rest.From(productsTable).
		Insert(productRowFrom(in), false, "", "representation", "").
		ExecuteTo(&products)
	if err != nil {
		return m.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if len(products) == 0 {
		return m.Product{}, fmt.Errorf("insert product: backend returned no row")
	}
	return products[0], nil
}

// UpdateProduct overwrites the full field set of the row matching id and
// reports whether such a row existed. There is no sparse merge.
func (s *DBService) UpdateProduct(id int, in m.ProductInput) (bool, error) {
	var products []m.Product
	_, err := s.rest.From(productsTable).
		Update(productRowFrom(in), "representation", "").
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&products)
	if err != nil {
		return false, fmt.Errorf("update product %d: %w", id, err)
	}
	return len(products) > 0, nil
}

// DeleteProduct removes the row matching id and reports whether it existed.
func (s *DBService) DeleteProduct(id int) (bool, error) {
	var products []m.Product
	_, err := s.rest.From(productsTable).
		Delete("representation", "").
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&products)
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, err)
	}
	return len(products) > 0, nil
}

// FindAllSauces returns every sauce ordered by ID ascending.
func (s *DBService) FindAllSauces() ([]m.Sauce, error) {
	var sauces []m.Sauce
	_, err := s.rest.From(saucesTable).
		Select("*", "", false).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&sauces)
	if err != nil {
		return nil, fmt.Errorf("select sauces: %w", err)
	}
	return sauces, nil
}

// FindSauceByID reports an absent row as (zero, false, nil).
func (s *DBService) FindSauceByID(id int) (m.Sauce, bool, error) {
	var sauces []m.Sauce
	_, err := s.rest.From(saucesTable).
		Select("*", "", false).
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&sauces)
	if err != nil {
		return m.Sauce{}, false, fmt.Errorf("select sauce %d: %w", id, err)
	}
	if len(sauces) == 0 {
		return m.Sauce{}, false, nil
	}
	return sauces[0], true, nil
}

// InsertSauce persists a new row and returns it with its assigned ID.
func (s *DBService) InsertSauce(in m.SauceInput) (m.Sauce, error) {
	var sauces []m.Sauce
	_, err := s.rest.From(saucesTable).
		Insert(sauceRowFrom(in), false, "", "representation", "").
		ExecuteTo(&sauces)
	if err != nil {
		return m.Sauce{}, fmt.Errorf("insert sauce: %w", err)
	}
	if len(sauces) == 0 {
		return m.Sauce{}, fmt.Errorf("insert sauce: backend returned no row")
	}
	return sauces[0], nil
}

// UpdateSauce overwrites the full field set of the row matching id.
func (s *DBService) UpdateSauce(id int, in m.SauceInput) (bool, error) {
	var sauces []m.Sauce
	_, err := s.rest.From(saucesTable).
		Update(sauceRowFrom(in), "representation", "").
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&sauces)
	if err != nil {
		return false, fmt.Errorf("update sauce %d: %w", id, err)
	}
	return len(sauces) > 0, nil
}

// DeleteSauce removes the row matching id and reports whether it existed.
func (s *DBService) DeleteSauce(id int) (bool, error) {
	var sauces []m.Sauce
	_, err := s.rest.From(saucesTable).
		Delete("representation", "").
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&sauces)
	if err != nil {
		return false, fmt.Errorf("delete sauce %d: %w", id, err)
	}
	return len(sauces) > 0, nil
}

// readStock fetches the current stock value of one row.
func (s *DBService) readStock(table string, id int) (int, bool, error) {
	var rows []struct {
		ID    int `json:"id"`
		Stock int `json:"stock"`
	}
	_, err := s.rest.From(table).
		Select("id,stock", "", false).
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&rows)
	if err != nil {
		return 0, false, fmt.Errorf("read stock of %s %d: %w", table, id, err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Stock, true, nil
}

// writeStock sets the stock value of one row. A write against a row that
// vanished since its check is an error, so compensation never counts it as
// applied.
func (s *DBService) writeStock(table string, id, stock int) error {
	var rows []struct {
		ID int `json:"id"`
	}
	_, err := s.rest.From(table).
		Update(map[string]int{"stock": stock}, "representation", "").
		Eq("id", strconv.Itoa(id)).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("write stock of %s %d: %w", table, id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("write stock of %s %d: row no longer exists", table, id)
	}
	return nil
}
