// Package memory implementa todos los puertos de persistencia en memoria.
// Las transacciones se serializan con un mutex y el rollback restaura una copia del estado.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type pairKey struct {
	productID   int64
	warehouseID int64
}

type state struct {
	units      map[int64]entity.Unit
	warehouses map[int64]entity.Warehouse
	products   map[int64]entity.Product
	users      map[int64]entity.User
	balances   map[pairKey]entity.Balance
	movements  []entity.Movement
	orders     []entity.ExitOrder

	nextUnit      int64
	nextWarehouse int64
	nextProduct   int64
	nextUser      int64
}

func newState() *state {
	return &state{
		units:      map[int64]entity.Unit{},
		warehouses: map[int64]entity.Warehouse{},
		products:   map[int64]entity.Product{},
		users:      map[int64]entity.User{},
		balances:   map[pairKey]entity.Balance{},
	}
}

func (s *state) clone() *state {
	cp := *s
	cp.units = make(map[int64]entity.Unit, len(s.units))
	for k, v := range s.units {
		cp.units[k] = v
	}
	cp.warehouses = make(map[int64]entity.Warehouse, len(s.warehouses))
	for k, v := range s.warehouses {
		cp.warehouses[k] = v
	}
	cp.products = make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		cp.products[k] = v
	}
	cp.users = make(map[int64]entity.User, len(s.users))
	for k, v := range s.users {
		cp.users[k] = v
	}
	cp.balances = make(map[pairKey]entity.Balance, len(s.balances))
	for k, v := range s.balances {
		cp.balances[k] = v
	}
	cp.movements = append([]entity.Movement(nil), s.movements...)
	cp.orders = append([]entity.ExitOrder(nil), s.orders...)
	return &cp
}

// Store es la base de datos en memoria. Es seguro para uso concurrente.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock fija el reloj usado para CreatedAt (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Run ejecuta fn con repositorios atados a una transacción exclusiva.
// Si fn falla o el contexto se cancela antes del commit, el estado vuelve al previo.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()
	v := &view{st: s.st, now: s.now}
	if err := fn(ctx, v.unitOfWork()); err != nil {
		s.st = backup
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = backup
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// locked ejecuta fn fuera de transacción con el estado bloqueado.
func (s *Store) locked(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st, now: s.now})
}

// AddUnit registra una unidad y devuelve su ID.
func (s *Store) AddUnit(u entity.Unit) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextUnit++
	u.ID = s.st.nextUnit
	s.st.units[u.ID] = u
	return u.ID
}

// AddWarehouse registra una bodega y devuelve su ID.
func (s *Store) AddWarehouse(w entity.Warehouse) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextWarehouse++
	w.ID = s.st.nextWarehouse
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	s.st.warehouses[w.ID] = w
	return w.ID
}

// AddProduct registra un producto derivando su SKU del ID.
func (s *Store) AddProduct(p entity.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextProduct++
	p.ID = s.st.nextProduct
	p.SKU = entity.SKUFor(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.st.products[p.ID] = p
	return p.ID
}

// AddUser registra un usuario y devuelve su ID.
func (s *Store) AddUser(u entity.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextUser++
	u.ID = s.st.nextUser
	s.st.users[u.ID] = u
	return u.ID
}

// RenameProduct cambia el nombre de un producto (catálogo).
func (s *Store) RenameProduct(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.st.products[id]; ok {
		p.Name = name
		s.st.products[id] = p
	}
}

// Movements devuelve una copia del log completo en orden de inserción.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Movement(nil), s.st.movements...)
}

// Balances devuelve una copia de todos los saldos.
func (s *Store) Balances() []entity.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Balance, 0, len(s.st.balances))
	for _, b := range s.st.balances {
		out = append(out, b)
	}
	return out
}

// Warehouses devuelve el repositorio de bodegas fuera de transacción.
func (s *Store) Warehouses() repository.WarehouseRepository { return warehouseReader{s} }

// Products devuelve el repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return productReader{s} }

// ExitOrders devuelve el repositorio de órdenes fuera de transacción.
func (s *Store) ExitOrders() repository.ExitOrderRepository { return exitOrderReader{s} }

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return userReader{s} }

// Reports devuelve el repositorio de reportes.
func (s *Store) Reports() repository.ReportRepository { return reportRepo{s} }

// NewDemoStore crea un store con una unidad, dos bodegas, un catálogo mínimo y dos usuarios:
// 1 super_admin y 2 supervisor de la unidad.
func NewDemoStore() *Store {
	s := NewStore()
	unitID := s.AddUnit(entity.Unit{Name: "Unidad Central", Acronym: "UC", Description: "Unidad de demostración"})
	s.AddUser(entity.User{Name: "Administrador", Email: "admin@demo.local", Role: entity.RoleSuperAdmin})
	s.AddUser(entity.User{Name: "Supervisor", Email: "supervisor@demo.local", Role: entity.RoleSupervisor, UnitID: &unitID})
	s.AddWarehouse(entity.Warehouse{Name: "Bodega Principal", Description: "Bodega central", UnitID: &unitID})
	s.AddWarehouse(entity.Warehouse{Name: "Bodega Auxiliar", UnitID: &unitID})
	s.AddProduct(entity.Product{Name: "Guantes de nitrilo", Unit: "CX"})
	s.AddProduct(entity.Product{Name: "Papel A4", Unit: "UN"})
	s.AddProduct(entity.Product{Name: "Alcohol 70%", Unit: "UN"})
	return s
}
