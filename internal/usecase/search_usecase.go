package usecase

import (
	"context"
	"net/http"
	"strings"

	repo "storefront/internal/repository"
	"storefront/internal/session"

	"go.uber.org/zap"
)

const maxQueryLength = 100

type SearchUsecase struct {
	productRepo repo.ProductRepository
	views       viewBuilder
	logger      *zap.Logger
}

// DI
func NewSearchUsecase(productRepo repo.ProductRepository, images repo.ImageResolver, logger *zap.Logger) *SearchUsecase {
	return &SearchUsecase{
		productRepo: productRepo,
		views:       viewBuilder{images: images, logger: logger},
		logger:      logger,
	}
}

type SearchOutput struct {
	Query string        `json:"query"`
	Items []ProductView `json:"items"`
	Count int           `json:"count"`
	Error string        `json:"error,omitempty"`
}

// Search は検索して結果をセッションに反映する。
// 後から来た検索に追い越された場合は反映せず 409。
func (u *SearchUsecase) Search(ctx context.Context, q string) (SearchOutput, error) {
	q = strings.TrimSpace(q)
	if len(q) > maxQueryLength {
		return SearchOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	s := session.MustFromContext(ctx)
	fctx, ticket := s.SearchFetch.Begin(ctx)

	products, err := u.productRepo.Search(fctx, q)
	result := session.SearchResult{Query: q, Products: products, Err: err}

	if !s.SearchFetch.Commit(ticket, func() { s.SetSearch(result) }) {
		u.logger.Debug("stale search dropped", zap.String("query", q))
		return SearchOutput{}, NewHTTPError(http.StatusConflict, "superseded")
	}

	out := SearchOutput{Query: q, Items: []ProductView{}}
	if err != nil {
		u.logger.Error("search fetch failed", zap.String("query", q), zap.Error(err))
		out.Error = "failed to search products"
		return out, nil
	}
	out.Items = u.views.many(products, cardImageSize)
	out.Count = len(out.Items)
	return out, nil
}

// Last は最後に反映された検索結果。
func (u *SearchUsecase) Last(ctx context.Context) SearchOutput {
	r := session.MustFromContext(ctx).Search()

	out := SearchOutput{Query: r.Query, Items: u.views.many(r.Products, cardImageSize)}
	out.Count = len(out.Items)
	if r.Err != nil {
		out.Error = "failed to search products"
	}
	return out
}
