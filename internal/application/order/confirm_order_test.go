package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/books-orders/internal/domain/book"
	"github.com/xiebiao/books-orders/internal/domain/order"
)

// ====== 内存假实现 ======

// stockRow 库存台账行
type stockRow struct {
	stock   int
	version int
}

// fakeBookRepo 内存图书仓储(只实现确认用例用到的TryDecrementStock)
// casLoseOnce记录的图书下一次扣减强制CAS落败(模拟并发写者抢先)
type fakeBookRepo struct {
	rows        map[uuid.UUID]*stockRow
	casLoseOnce map[uuid.UUID]bool
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		rows:        make(map[uuid.UUID]*stockRow),
		casLoseOnce: make(map[uuid.UUID]bool),
	}
}

func (f *fakeBookRepo) addBook(id uuid.UUID, stock int) {
	f.rows[id] = &stockRow{stock: stock, version: 1}
}

func (f *fakeBookRepo) TryDecrementStock(_ context.Context, id uuid.UUID, qty int) (bool, int, error) {
	row, exists := f.rows[id]
	if !exists {
		return false, 0, nil
	}
	if row.stock < qty {
		return false, row.stock, nil
	}
	if f.casLoseOnce[id] {
		delete(f.casLoseOnce, id)
		return false, row.stock, nil
	}
	observed := row.stock
	row.stock -= qty
	row.version++
	return true, observed, nil
}

// 确认用例只用到TryDecrementStock,其余接口方法给出空实现
func (f *fakeBookRepo) Create(_ context.Context, _ *book.Book) error { return nil }

func (f *fakeBookRepo) FindByID(_ context.Context, _ uuid.UUID) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) List(_ context.Context, _ book.ListParams) ([]*book.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) ExistsDuplicate(_ context.Context, _ string, _ uuid.UUID, _ int) (bool, error) {
	return false, nil
}

// snapshot / restore 支撑假事务管理器的回滚语义
func (f *fakeBookRepo) snapshot() map[uuid.UUID]stockRow {
	snap := make(map[uuid.UUID]stockRow, len(f.rows))
	for id, row := range f.rows {
		snap[id] = *row
	}
	return snap
}

func (f *fakeBookRepo) restore(snap map[uuid.UUID]stockRow) {
	for id, row := range snap {
		r := row
		f.rows[id] = &r
	}
}

// fakeOrderRepo 内存订单仓储
type fakeOrderRepo struct {
	orders map[uuid.UUID]*order.Order
	// flipRacer 在UpdateStatus执行前把订单抢翻成CONFIRMED,模拟并发确认抢先提交
	flipRacer bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (f *fakeOrderRepo) CreateDraft(_ context.Context, o *order.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, exists := f.orders[id]
	if !exists {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to order.Status) error {
	o, exists := f.orders[id]
	if !exists {
		return order.ErrOrderNotFound
	}
	if f.flipRacer {
		f.flipRacer = false
		o.Status = order.StatusConfirmed
	}
	if o.Status != from {
		return order.ErrInvalidStatusTransition
	}
	o.Status = to
	return nil
}

// fakeIdemStore 内存幂等存储(insert-if-absent)
type fakeIdemStore struct {
	records map[string]*order.IdempotencyRecord
	saves   int
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{records: make(map[string]*order.IdempotencyRecord)}
}

func (f *fakeIdemStore) Get(_ context.Context, key string) (*order.IdempotencyRecord, error) {
	return f.records[key], nil
}

func (f *fakeIdemStore) Save(_ context.Context, rec *order.IdempotencyRecord) error {
	f.saves++
	if _, exists := f.records[rec.Key]; exists {
		return nil // first-writer-wins,静默no-op
	}
	f.records[rec.Key] = rec
	return nil
}

// fakeTxManager 假事务管理器
// fn返回error时把图书库存恢复到事务前快照,模拟数据库ROLLBACK;
// 订单状态翻转发生在事务最后一步,翻转失败时库存同样被回滚
type fakeTxManager struct {
	bookRepo *fakeBookRepo
}

func (f *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := f.bookRepo.snapshot()
	if err := fn(ctx); err != nil {
		f.bookRepo.restore(snap)
		return err
	}
	return nil
}

// fakePublisher 记录发布的事件
type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	f.published = append(f.published, routingKey)
	return nil
}

// ====== 测试脚手架 ======

type confirmFixture struct {
	uc        *ConfirmOrderUseCase
	bookRepo  *fakeBookRepo
	orderRepo *fakeOrderRepo
	idemStore *fakeIdemStore
	publisher *fakePublisher
}

func newConfirmFixture() *confirmFixture {
	bookRepo := newFakeBookRepo()
	orderRepo := newFakeOrderRepo()
	idemStore := newFakeIdemStore()
	publisher := &fakePublisher{}
	tx := &fakeTxManager{bookRepo: bookRepo}
	return &confirmFixture{
		uc:        NewConfirmOrderUseCase(orderRepo, bookRepo, idemStore, tx, publisher),
		bookRepo:  bookRepo,
		orderRepo: orderRepo,
		idemStore: idemStore,
		publisher: publisher,
	}
}

// addDraft 建一张草稿订单,每个元素是(图书ID, 数量)
func (fx *confirmFixture) addDraft(t *testing.T, lines ...order.LineInput) *order.Order {
	t.Helper()
	o, err := order.NewDraft(lines)
	require.NoError(t, err)
	require.NoError(t, fx.orderRepo.CreateDraft(context.Background(), o))
	return o
}

// ====== 测试用例 ======

func TestConfirmOrder_成功确认(t *testing.T) {
	fx := newConfirmFixture()
	bookA, bookB := uuid.New(), uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	fx.bookRepo.addBook(bookB, 5)
	o := fx.addDraft(t,
		order.LineInput{ProductID: bookA, Qty: 3},
		order.LineInput{ProductID: bookB, Qty: 5},
	)

	result, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	require.NoError(t, err)
	assert.False(t, result.Replayed)

	// 响应体反映订单的id/status/created_at,时间戳取订单创建时间
	var body map[string]string
	require.NoError(t, json.Unmarshal(result.Body, &body))
	assert.Equal(t, o.ID.String(), body["id"])
	assert.Equal(t, "CONFIRMED", body["status"])
	assert.Equal(t, o.CreatedAt.UTC().Format(time.RFC3339), body["created_at"])

	// 库存扣减恰好一次,version同步递增
	assert.Equal(t, 7, fx.bookRepo.rows[bookA].stock)
	assert.Equal(t, 2, fx.bookRepo.rows[bookA].version)
	assert.Equal(t, 0, fx.bookRepo.rows[bookB].stock)

	// 订单翻到终态
	stored, _ := fx.orderRepo.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusConfirmed, stored.Status)

	// 确认事件已发布
	assert.Equal(t, []string{RoutingKeyOrderConfirmed}, fx.publisher.published)
}

func TestConfirmOrder_库存不足整体回滚(t *testing.T) {
	fx := newConfirmFixture()
	bookA, bookB := uuid.New(), uuid.New()
	fx.bookRepo.addBook(bookA, 10) // 充足
	fx.bookRepo.addBook(bookB, 1)  // 不足
	o := fx.addDraft(t,
		order.LineInput{ProductID: bookA, Qty: 2},
		order.LineInput{ProductID: bookB, Qty: 3},
	)

	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	require.Error(t, err)
	assert.True(t, order.IsInsufficientStock(err))

	// 缺货清单只包含不足的那一行,带观测到的库存
	var insufficientErr *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	require.Len(t, insufficientErr.Shortages, 1)
	assert.Equal(t, bookB, insufficientErr.Shortages[0].ProductID)
	assert.Equal(t, 3, insufficientErr.Shortages[0].Requested)
	assert.Equal(t, 1, insufficientErr.Shortages[0].Available)

	// 教学要点:第一行扣减成功过,但事务回滚后必须恢复原状
	assert.Equal(t, 10, fx.bookRepo.rows[bookA].stock)
	assert.Equal(t, 1, fx.bookRepo.rows[bookA].version)

	// 订单保持DRAFT,可修复后重新确认
	stored, _ := fx.orderRepo.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusDraft, stored.Status)
	assert.Empty(t, fx.publisher.published)
}

func TestConfirmOrder_收集全部缺货行(t *testing.T) {
	fx := newConfirmFixture()
	bookA, bookB, missing := uuid.New(), uuid.New(), uuid.New()
	fx.bookRepo.addBook(bookA, 0)
	fx.bookRepo.addBook(bookB, 2)
	o := fx.addDraft(t,
		order.LineInput{ProductID: bookA, Qty: 1},
		order.LineInput{ProductID: missing, Qty: 4}, // 图书不存在
		order.LineInput{ProductID: bookB, Qty: 5},
	)

	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	var insufficientErr *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	// 三行全部上报,按行序排列;不存在的图书available=0
	require.Len(t, insufficientErr.Shortages, 3)
	assert.Equal(t, bookA, insufficientErr.Shortages[0].ProductID)
	assert.Equal(t, 0, insufficientErr.Shortages[0].Available)
	assert.Equal(t, missing, insufficientErr.Shortages[1].ProductID)
	assert.Equal(t, 0, insufficientErr.Shortages[1].Available)
	assert.Equal(t, bookB, insufficientErr.Shortages[2].ProductID)
	assert.Equal(t, 2, insufficientErr.Shortages[2].Available)
}

func TestConfirmOrder_幂等重放字节级一致(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 4})

	req := ConfirmOrderRequest{OrderID: o.ID, IdempotencyKey: "key-123"}

	first, err := fx.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, 6, fx.bookRepo.rows[bookA].stock)

	// 同Key重发:返回存档原文,库存不再扣减
	second, err := fx.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, string(first.Body), string(second.Body))
	assert.Equal(t, 6, fx.bookRepo.rows[bookA].stock)
	assert.Equal(t, 2, fx.bookRepo.rows[bookA].version)
}

func TestConfirmOrder_已确认订单幂等成功(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 2})

	// 第一次确认不带Key
	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})
	require.NoError(t, err)

	// 第二次确认带Key:订单已是CONFIRMED,合成响应并补写幂等记录
	result, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{
		OrderID:        o.ID,
		IdempotencyKey: "late-key",
	})
	require.NoError(t, err)
	assert.Contains(t, string(result.Body), "CONFIRMED")
	assert.Equal(t, 8, fx.bookRepo.rows[bookA].stock) // 没有二次扣减
	assert.NotNil(t, fx.idemStore.records["late-key"])
}

func TestConfirmOrder_已取消订单拒绝确认(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 1})
	fx.orderRepo.orders[o.ID].Status = order.StatusCancelled

	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	assert.ErrorIs(t, err, order.ErrOrderCancelled)
	assert.Equal(t, 10, fx.bookRepo.rows[bookA].stock)
}

func TestConfirmOrder_订单不存在(t *testing.T) {
	fx := newConfirmFixture()

	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: uuid.New()})

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestConfirmOrder_CAS落败上报为冲突缺货(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	fx.bookRepo.casLoseOnce[bookA] = true // 模拟并发写者抢先改了version
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 2})

	_, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	// 本次确认内不重试:observed够但CAS没赢,按缺货上报由客户端重试
	var insufficientErr *order.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	require.Len(t, insufficientErr.Shortages, 1)
	assert.Equal(t, 10, insufficientErr.Shortages[0].Available)

	// 库存没动,订单保持DRAFT
	assert.Equal(t, 10, fx.bookRepo.rows[bookA].stock)
	stored, _ := fx.orderRepo.FindByID(context.Background(), o.ID)
	assert.Equal(t, order.StatusDraft, stored.Status)
}

func TestConfirmOrder_并发确认落败方按幂等成功兜底(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 3})
	fx.orderRepo.flipRacer = true // 状态翻转前被对手抢翻成CONFIRMED

	result, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{OrderID: o.ID})

	// 落败方事务回滚(本方扣减撤销),重新加载后按幂等成功返回
	require.NoError(t, err)
	assert.Contains(t, string(result.Body), "CONFIRMED")
	assert.Equal(t, 10, fx.bookRepo.rows[bookA].stock)
}

func TestConfirmOrder_幂等记录firstWriterWins(t *testing.T) {
	fx := newConfirmFixture()
	bookA := uuid.New()
	fx.bookRepo.addBook(bookA, 10)
	o := fx.addDraft(t, order.LineInput{ProductID: bookA, Qty: 1})

	first, err := fx.uc.Execute(context.Background(), ConfirmOrderRequest{
		OrderID:        o.ID,
		IdempotencyKey: "shared-key",
	})
	require.NoError(t, err)

	// 直接向存储再写同Key的不同内容:静默no-op,存档不变
	err = fx.idemStore.Save(context.Background(), &order.IdempotencyRecord{
		Key:      "shared-key",
		OrderID:  uuid.New(),
		Response: []byte(`{"tampered":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, string(first.Body), string(fx.idemStore.records["shared-key"].Response))
}
