package apifootball

import "github.com/quangdvn/footyodds/internal/usecase"

type pagingBlock struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Pages   int `json:"pages"`
}

type envelope struct {
	Get        string           `json:"get"`
	Errors     any              `json:"errors"`
	Results    int              `json:"results"`
	Paging     pagingBlock      `json:"paging"`
	Response   []map[string]any `json:"response"`
	Parameters map[string]any   `json:"parameters"`
}

func (p pagingBlock) toExternal() usecase.ExternalPaging {
	return usecase.ExternalPaging{
		Current: p.Current,
		Total:   p.Total,
		Limit:   p.Limit,
		Pages:   p.Pages,
	}
}
