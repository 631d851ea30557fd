package book

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/books-orders/internal/domain/author"
	"github.com/xiebiao/books-orders/internal/domain/book"
)

// fakeAuthorRepo 内存作者仓储
type fakeAuthorRepo struct {
	authors map[uuid.UUID]*author.Author
}

func (f *fakeAuthorRepo) Create(_ context.Context, a *author.Author) error {
	f.authors[a.ID] = a
	return nil
}

func (f *fakeAuthorRepo) FindByID(_ context.Context, id uuid.UUID) (*author.Author, error) {
	a, exists := f.authors[id]
	if !exists {
		return nil, author.ErrAuthorNotFound
	}
	return a, nil
}

func (f *fakeAuthorRepo) List(_ context.Context, _ string, _, _ int) ([]*author.Author, error) {
	return nil, nil
}

// fakeBookRepo 内存图书仓储
type fakeBookRepo struct {
	books []*book.Book
}

func (f *fakeBookRepo) Create(_ context.Context, b *book.Book) error {
	f.books = append(f.books, b)
	return nil
}

func (f *fakeBookRepo) FindByID(_ context.Context, _ uuid.UUID) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) List(_ context.Context, _ book.ListParams) ([]*book.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) ExistsDuplicate(_ context.Context, title string, authorID uuid.UUID, year int) (bool, error) {
	for _, b := range f.books {
		if b.Title == title && b.AuthorID == authorID && b.PublishedYear() == year {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookRepo) TryDecrementStock(_ context.Context, _ uuid.UUID, _ int) (bool, int, error) {
	return false, 0, nil
}

// passthroughTx 直通事务管理器
type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newCreateBookFixture() (*CreateBookUseCase, *fakeAuthorRepo, *fakeBookRepo) {
	authorRepo := &fakeAuthorRepo{authors: make(map[uuid.UUID]*author.Author)}
	bookRepo := &fakeBookRepo{}
	return NewCreateBookUseCase(bookRepo, authorRepo, passthroughTx{}), authorRepo, bookRepo
}

func TestCreateBook_成功创建(t *testing.T) {
	uc, authorRepo, bookRepo := newCreateBookFixture()
	a, err := author.NewAuthor("王小波", "")
	require.NoError(t, err)
	require.NoError(t, authorRepo.Create(context.Background(), a))

	result, err := uc.Execute(context.Background(), CreateBookRequest{
		Title:    "黄金时代",
		AuthorID: a.ID,
		Price:    3900,
		Stock:    100,
	})

	require.NoError(t, err)
	assert.Equal(t, "黄金时代", result.Title)
	assert.Equal(t, 1, result.Version, "version从1开始")
	assert.Len(t, bookRepo.books, 1)
}

func TestCreateBook_作者不存在(t *testing.T) {
	uc, _, _ := newCreateBookFixture()

	_, err := uc.Execute(context.Background(), CreateBookRequest{
		Title:    "无主之书",
		AuthorID: uuid.New(),
		Price:    1000,
		Stock:    1,
	})

	assert.ErrorIs(t, err, book.ErrAuthorNotExists)
}

func TestCreateBook_同作者同年份同名重复(t *testing.T) {
	uc, authorRepo, _ := newCreateBookFixture()
	a, _ := author.NewAuthor("王小波", "")
	require.NoError(t, authorRepo.Create(context.Background(), a))

	req := CreateBookRequest{Title: "黄金时代", AuthorID: a.ID, Price: 3900, Stock: 10}
	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, book.ErrDuplicateBook)
}

func TestCreateBook_参数校验(t *testing.T) {
	uc, authorRepo, _ := newCreateBookFixture()
	a, _ := author.NewAuthor("王小波", "")
	require.NoError(t, authorRepo.Create(context.Background(), a))

	cases := []struct {
		name string
		req  CreateBookRequest
	}{
		{"空标题", CreateBookRequest{Title: "  ", AuthorID: a.ID, Price: 100, Stock: 1}},
		{"负价格", CreateBookRequest{Title: "书", AuthorID: a.ID, Price: -1, Stock: 1}},
		{"负库存", CreateBookRequest{Title: "书", AuthorID: a.ID, Price: 100, Stock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}
