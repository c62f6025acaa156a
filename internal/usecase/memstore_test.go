package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// =====================
// メモリ上のDB（WithinTxは直列化、エラーなら全部戻す）
// =====================

type memData struct {
	products      map[int64]model.Product
	variations    map[int64]model.ProductVariation
	carts         map[int64]model.Cart
	cartItems     map[int64]model.CartItem
	orders        map[int64]model.Order
	orderItems    map[int64]model.OrderItem
	addresses     map[int64]model.Address
	users         map[int64]model.User
	audits        []model.AuditLog
	adjustments   []model.InventoryAdjustment
	notifications []model.Notification
	nextID        int64
}

func (d *memData) clone() *memData {
	c := &memData{
		products:      make(map[int64]model.Product, len(d.products)),
		variations:    make(map[int64]model.ProductVariation, len(d.variations)),
		carts:         make(map[int64]model.Cart, len(d.carts)),
		cartItems:     make(map[int64]model.CartItem, len(d.cartItems)),
		orders:        make(map[int64]model.Order, len(d.orders)),
		orderItems:    make(map[int64]model.OrderItem, len(d.orderItems)),
		addresses:     make(map[int64]model.Address, len(d.addresses)),
		users:         make(map[int64]model.User, len(d.users)),
		audits:        append([]model.AuditLog(nil), d.audits...),
		adjustments:   append([]model.InventoryAdjustment(nil), d.adjustments...),
		notifications: append([]model.Notification(nil), d.notifications...),
		nextID:        d.nextID,
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.variations {
		c.variations[k] = v
	}
	for k, v := range d.carts {
		c.carts[k] = v
	}
	for k, v := range d.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.orderItems {
		c.orderItems[k] = v
	}
	for k, v := range d.addresses {
		c.addresses[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

type memDB struct {
	mu   sync.Mutex
	data *memData
	// 指定した操作名でエラーを返す（ロールバック確認用）
	failOn string
	// FindByUserIDForUpdate の回数
	cartLocks int
}

var errInjected = errors.New("injected failure")

func newMemDB() *memDB {
	return &memDB{data: (&memData{}).clone()}
}

func (db *memDB) id() int64 {
	db.data.nextID++
	return db.data.nextID
}

func (db *memDB) fail(op string) error {
	if db.failOn == op {
		return errInjected
	}
	return nil
}

// WithinTx：ロックを取ってスナップショット、エラーなら戻す
func (db *memDB) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.data.clone()
	if err := fn(db.repos(false)); err != nil {
		db.data = snapshot
		return err
	}
	return nil
}

type memConn struct {
	db   *memDB
	auto bool
}

// tx外から呼ばれたときだけロックする
func (c memConn) lock() func() {
	if !c.auto {
		return func() {}
	}
	c.db.mu.Lock()
	return c.db.mu.Unlock
}

type memRepos struct {
	c memConn
}

func (db *memDB) repos(auto bool) *memRepos {
	return &memRepos{c: memConn{db: db, auto: auto}}
}

func (r *memRepos) Orders() repo.OrderRepository         { return memOrders{r.c} }
func (r *memRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.c} }
func (r *memRepos) Carts() repo.CartRepository           { return memCarts{r.c} }
func (r *memRepos) CartItems() repo.CartItemRepository   { return memCartItems{r.c} }
func (r *memRepos) Inventory() repo.InventoryRepository  { return memInventory{r.c} }
func (r *memRepos) Products() repo.ProductRepository     { return memProducts{r.c} }
func (r *memRepos) AuditLogs() repo.AuditLogRepository   { return memAudits{r.c} }

// tx外で使うrepo
func (db *memDB) Carts() memCarts         { return memCarts{memConn{db, true}} }
func (db *memDB) CartItems() memCartItems { return memCartItems{memConn{db, true}} }
func (db *memDB) Products() memProducts   { return memProducts{memConn{db, true}} }
func (db *memDB) Addresses() memAddresses { return memAddresses{memConn{db, true}} }
func (db *memDB) Users() memUsers         { return memUsers{memConn{db, true}} }

// =====================
// seed / 読み出しヘルパー
// =====================

func (db *memDB) addProduct(name string, price string, stock int64) model.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := model.Product{
		ID:            db.id(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(price),
		Stock:         stock,
		IsActive:      true,
	}
	db.data.products[p.ID] = p
	return p
}

func (db *memDB) addVariation(productID int64, amount string, unit model.Unit, price string, stock int64) model.ProductVariation {
	db.mu.Lock()
	defer db.mu.Unlock()
	v := model.ProductVariation{
		ID:            db.id(),
		ProductID:     productID,
		Amount:        decimal.RequireFromString(amount),
		Unit:          unit,
		Price:         decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(price),
		Stock:         stock,
		IsActive:      true,
	}
	db.data.variations[v.ID] = v
	return v
}

func (db *memDB) addAddress(userID int64) model.Address {
	db.mu.Lock()
	defer db.mu.Unlock()
	first := true
	for _, a := range db.data.addresses {
		if a.UserID == userID {
			first = false
		}
	}
	a := model.Address{ID: db.id(), UserID: userID, PostalCode: "100-0001", Prefecture: "Tokyo", City: "Chiyoda", Line1: "1-1", Name: "Taro", IsDefault: first}
	db.data.addresses[a.ID] = a
	return a
}

func (db *memDB) addUser(role model.Role) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: db.id(), Email: "u@example.com", Role: role, IsActive: true}
	db.data.users[u.ID] = u
	return u
}

// ユーザーのカートに明細を直接入れる
func (db *memDB) addCartLine(userID int64, target model.LineTarget, qty model.Quantity) model.CartItem {
	cart, err := db.Carts().GetOrCreateByUserID(context.Background(), userID)
	if err != nil {
		panic(err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	it := model.CartItem{ID: db.id(), CartID: cart.ID, Target: target, Qty: qty}
	db.data.cartItems[it.ID] = it
	return it
}

func (db *memDB) productStock(id int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.data.products[id].Stock
}

func (db *memDB) variationStock(id int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.data.variations[id].Stock
}

func (db *memDB) orderCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.orders)
}

func (db *memDB) orderItemCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.orderItems)
}

func (db *memDB) cartCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.data.carts)
}

func (db *memDB) cartLineCount(cartID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, it := range db.data.cartItems {
		if it.CartID == cartID {
			n++
		}
	}
	return n
}

// =====================
// carts / cart items
// =====================

type memCarts struct{ c memConn }

func (r memCarts) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	defer r.c.lock()()
	for _, c := range r.c.db.data.carts {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	cart := model.NewUserCart(userID)
	cart.ID = r.c.db.id()
	r.c.db.data.carts[cart.ID] = cart
	return cart, nil
}

func (r memCarts) GetOrCreateBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	defer r.c.lock()()
	for _, c := range r.c.db.data.carts {
		if c.SessionKey != nil && *c.SessionKey == sessionKey {
			return c, nil
		}
	}
	cart := model.NewSessionCart(sessionKey)
	cart.ID = r.c.db.id()
	r.c.db.data.carts[cart.ID] = cart
	return cart, nil
}

func (r memCarts) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	defer r.c.lock()()
	for _, c := range r.c.db.data.carts {
		if c.UserID != nil && *c.UserID == userID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r memCarts) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID)
	if err == nil {
		r.c.db.cartLocks++
	}
	return cart, err
}

func (r memCarts) FindBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	defer r.c.lock()()
	for _, c := range r.c.db.data.carts {
		if c.SessionKey != nil && *c.SessionKey == sessionKey {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (r memCarts) Clear(ctx context.Context, cartID int64) error {
	defer r.c.lock()()
	if err := r.c.db.fail("Clear"); err != nil {
		return err
	}
	if _, ok := r.c.db.data.carts[cartID]; !ok {
		return repo.ErrNotFound
	}
	for id, it := range r.c.db.data.cartItems {
		if it.CartID == cartID {
			delete(r.c.db.data.cartItems, id)
		}
	}
	return nil
}

func (r memCarts) Delete(ctx context.Context, cartID int64) error {
	defer r.c.lock()()
	if _, ok := r.c.db.data.carts[cartID]; !ok {
		return repo.ErrNotFound
	}
	for id, it := range r.c.db.data.cartItems {
		if it.CartID == cartID {
			delete(r.c.db.data.cartItems, id)
		}
	}
	delete(r.c.db.data.carts, cartID)
	return nil
}

type memCartItems struct{ c memConn }

func (r memCartItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	defer r.c.lock()()
	out := []model.CartItem{}
	for _, it := range r.c.db.data.cartItems {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCartItems) Upsert(ctx context.Context, cartID int64, target model.LineTarget, add model.Quantity) error {
	if err := add.Validate(); err != nil {
		return err
	}
	defer r.c.lock()()
	for id, it := range r.c.db.data.cartItems {
		if it.CartID == cartID && it.Target == target {
			merged, err := it.Qty.Merge(add)
			if err != nil {
				return err
			}
			it.Qty = merged
			r.c.db.data.cartItems[id] = it
			return nil
		}
	}
	it := model.CartItem{ID: r.c.db.id(), CartID: cartID, Target: target, Qty: add}
	r.c.db.data.cartItems[it.ID] = it
	return nil
}

func (r memCartItems) UpdateQuantity(ctx context.Context, cartItemID int64, qty model.Quantity) error {
	defer r.c.lock()()
	it, ok := r.c.db.data.cartItems[cartItemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Qty = qty
	r.c.db.data.cartItems[cartItemID] = it
	return nil
}

func (r memCartItems) DeleteByID(ctx context.Context, cartItemID int64) error {
	defer r.c.lock()()
	if _, ok := r.c.db.data.cartItems[cartItemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.c.db.data.cartItems, cartItemID)
	return nil
}

func (r memCartItems) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	defer r.c.lock()()
	it, ok := r.c.db.data.cartItems[cartItemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r memCartItems) IsInCart(ctx context.Context, cartItemID int64, cartID int64) (bool, error) {
	defer r.c.lock()()
	it, ok := r.c.db.data.cartItems[cartItemID]
	return ok && it.CartID == cartID, nil
}

// =====================
// products / inventory
// =====================

type memProducts struct{ c memConn }

func (r memProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in memstore tests")
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	defer r.c.lock()()
	p, ok := r.c.db.data.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in memstore tests")
}

func (r memProducts) Update(ctx context.Context, p model.Product) error {
	panic("not used in memstore tests")
}

func (r memProducts) SoftDelete(ctx context.Context, id int64) error {
	defer r.c.lock()()
	p, ok := r.c.db.data.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.DeletedAt.Valid = true
	p.DeletedAt.Time = time.Now()
	r.c.db.data.products[id] = p
	return nil
}

func (r memProducts) FindVariationByID(ctx context.Context, id int64) (model.ProductVariation, error) {
	defer r.c.lock()()
	v, ok := r.c.db.data.variations[id]
	if !ok {
		return model.ProductVariation{}, repo.ErrNotFound
	}
	return v, nil
}

func (r memProducts) ListVariations(ctx context.Context, productID int64) ([]model.ProductVariation, error) {
	panic("not used in memstore tests")
}

func (r memProducts) CreateVariation(ctx context.Context, v model.ProductVariation) (model.ProductVariation, error) {
	panic("not used in memstore tests")
}

type memInventory struct{ c memConn }

func (r memInventory) StockOf(ctx context.Context, unit model.LineTarget) (int64, error) {
	defer r.c.lock()()
	switch unit.Kind {
	case model.TargetProduct:
		p, ok := r.c.db.data.products[unit.ID]
		if !ok {
			return 0, repo.ErrNotFound
		}
		return p.Stock, nil
	case model.TargetVariation:
		v, ok := r.c.db.data.variations[unit.ID]
		if !ok {
			return 0, repo.ErrNotFound
		}
		return v.Stock, nil
	}
	return 0, model.ErrCorruptLineItem
}

func (r memInventory) SetStock(ctx context.Context, unit model.LineTarget, newStock int64) error {
	defer r.c.lock()()
	return r.adjust(unit, func(int64) (int64, bool) { return newStock, true })
}

// stock >= qty のときだけ減らす
func (r memInventory) DecreaseStockIfEnough(ctx context.Context, unit model.LineTarget, qty int64) (bool, error) {
	defer r.c.lock()()
	ok := false
	err := r.adjust(unit, func(stock int64) (int64, bool) {
		if stock < qty {
			return stock, false
		}
		ok = true
		return stock - qty, true
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	return ok, err
}

func (r memInventory) IncreaseStock(ctx context.Context, unit model.LineTarget, qty int64) error {
	defer r.c.lock()()
	return r.adjust(unit, func(stock int64) (int64, bool) { return stock + qty, true })
}

func (r memInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	defer r.c.lock()()
	r.c.db.data.adjustments = append(r.c.db.data.adjustments, adj)
	return nil
}

var errNoChange = errors.New("no change")

func (r memInventory) adjust(unit model.LineTarget, f func(stock int64) (int64, bool)) error {
	switch unit.Kind {
	case model.TargetProduct:
		p, ok := r.c.db.data.products[unit.ID]
		if !ok {
			return repo.ErrNotFound
		}
		next, changed := f(p.Stock)
		if !changed {
			return errNoChange
		}
		p.Stock = next
		r.c.db.data.products[unit.ID] = p
		return nil
	case model.TargetVariation:
		v, ok := r.c.db.data.variations[unit.ID]
		if !ok {
			return repo.ErrNotFound
		}
		next, changed := f(v.Stock)
		if !changed {
			return errNoChange
		}
		v.Stock = next
		r.c.db.data.variations[unit.ID] = v
		return nil
	}
	return model.ErrCorruptLineItem
}

// =====================
// orders / order items / audit
// =====================

type memOrders struct{ c memConn }

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	defer r.c.lock()()
	o, ok := r.c.db.data.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.FindByID(ctx, orderID)
}

func (r memOrders) list(match func(model.Order) bool) []model.Order {
	out := []model.Order{}
	for _, o := range r.c.db.data.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	defer r.c.lock()()
	out := r.list(func(o model.Order) bool { return o.UserID == userID })
	return out, int64(len(out)), nil
}

func (r memOrders) ListByDeliveryUserID(ctx context.Context, deliveryUserID int64, page int, limit int) ([]model.Order, int64, error) {
	defer r.c.lock()()
	out := r.list(func(o model.Order) bool { return o.IsAssignedTo(deliveryUserID) })
	return out, int64(len(out)), nil
}

func (r memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	defer r.c.lock()()
	if err := r.c.db.fail("CreateOrder"); err != nil {
		return 0, err
	}
	if order.IdempotencyKey != nil {
		for _, o := range r.c.db.data.orders {
			if o.UserID == order.UserID && o.IdempotencyKey != nil && *o.IdempotencyKey == *order.IdempotencyKey {
				return 0, repo.ErrConflict
			}
		}
	}
	order.ID = r.c.db.id()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.c.db.data.orders[order.ID] = order
	return order.ID, nil
}

func (r memOrders) update(orderID int64, f func(o *model.Order)) error {
	o, ok := r.c.db.data.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	f(&o)
	r.c.db.data.orders[orderID] = o
	return nil
}

func (r memOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	defer r.c.lock()()
	return r.update(orderID, func(o *model.Order) { o.Status = status })
}

func (r memOrders) UpdateTotal(ctx context.Context, orderID int64, total decimal.Decimal) error {
	defer r.c.lock()()
	return r.update(orderID, func(o *model.Order) { o.Total = total })
}

func (r memOrders) AssignDelivery(ctx context.Context, orderID int64, deliveryUserID int64) error {
	defer r.c.lock()()
	return r.update(orderID, func(o *model.Order) { o.DeliveryUserID = &deliveryUserID })
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	defer r.c.lock()()
	for _, o := range r.c.db.data.orders {
		if o.UserID == userID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	defer r.c.lock()()
	out := r.list(func(o model.Order) bool { return f.Status == "" || string(o.Status) == f.Status })
	return out, int64(len(out)), nil
}

type memOrderItems struct{ c memConn }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	defer r.c.lock()()
	if err := r.c.db.fail("CreateBulk"); err != nil {
		return err
	}
	for _, it := range items {
		it.ID = r.c.db.id()
		it.OrderID = orderID
		r.c.db.data.orderItems[it.ID] = it
	}
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	defer r.c.lock()()
	out := []model.OrderItem{}
	for _, it := range r.c.db.data.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memAudits struct{ c memConn }

func (r memAudits) Create(ctx context.Context, log model.AuditLog) error {
	defer r.c.lock()()
	log.ID = r.c.db.id()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.c.db.data.audits = append(r.c.db.data.audits, log)
	return nil
}

// 追加順（=古い順）
func (r memAudits) ListByResource(ctx context.Context, resource model.AuditResourceType, resourceID int64, limit int) ([]model.AuditLog, error) {
	defer r.c.lock()()
	out := []model.AuditLog{}
	for _, l := range r.c.db.data.audits {
		if l.ResourceType == resource && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =====================
// addresses / users
// =====================

type memAddresses struct{ c memConn }

func (r memAddresses) Create(ctx context.Context, a model.Address) (model.Address, error) {
	defer r.c.lock()()
	a.ID = r.c.db.id()
	a.IsDefault = len(r.byUser(a.UserID)) == 0
	r.c.db.data.addresses[a.ID] = a
	return a, nil
}

// デフォルトが先頭、あとはID順
func (r memAddresses) byUser(userID int64) []model.Address {
	out := []model.Address{}
	for _, a := range r.c.db.data.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r memAddresses) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	defer r.c.lock()()
	return r.byUser(userID), nil
}

func (r memAddresses) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	defer r.c.lock()()
	a, ok := r.c.db.data.addresses[addressID]
	if !ok {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (r memAddresses) Update(ctx context.Context, a model.Address) (model.Address, error) {
	defer r.c.lock()()
	cur, ok := r.c.db.data.addresses[a.ID]
	if !ok || cur.UserID != a.UserID {
		return model.Address{}, repo.ErrNotFound
	}
	a.IsDefault = cur.IsDefault
	a.CreatedAt = cur.CreatedAt
	r.c.db.data.addresses[a.ID] = a
	return a, nil
}

func (r memAddresses) Delete(ctx context.Context, userID, addressID int64) error {
	defer r.c.lock()()
	a, ok := r.c.db.data.addresses[addressID]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	for _, o := range r.c.db.data.orders {
		if o.AddressID == addressID && !o.Status.Terminal() {
			return repo.ErrConflict
		}
	}
	delete(r.c.db.data.addresses, addressID)
	if a.IsDefault {
		if rest := r.byUser(userID); len(rest) > 0 {
			next := rest[0]
			next.IsDefault = true
			r.c.db.data.addresses[next.ID] = next
		}
	}
	return nil
}

func (r memAddresses) SetDefault(ctx context.Context, userID, addressID int64) error {
	defer r.c.lock()()
	if a, ok := r.c.db.data.addresses[addressID]; !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	for id, a := range r.c.db.data.addresses {
		if a.UserID == userID {
			a.IsDefault = id == addressID
			r.c.db.data.addresses[id] = a
		}
	}
	return nil
}

type memUsers struct{ c memConn }

func (r memUsers) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	defer r.c.lock()()
	u, ok := r.c.db.data.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
