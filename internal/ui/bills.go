package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/billed/internal/calculator"
	"github.com/mmynk/billed/internal/client"
	"github.com/mmynk/billed/internal/models"
	"github.com/mmynk/billed/internal/ui/views"
)

// Bills is the container behind the employee bill list.
type Bills struct {
	store client.BillStore
	views *views.Views
}

// NewBills creates the bill list container.
func NewBills(store client.BillStore, v *views.Views) *Bills {
	return &Bills{store: store, views: v}
}

// RegisterRoutes binds the bill list page and its events.
func (b *Bills) RegisterRoutes(r chi.Router) {
	r.Get(views.PathBills, b.ServePage)
	r.Get(views.PathBills+"/{id}/receipt", b.HandleClickIconEye)
	r.Post(views.PathClickNewBill, b.HandleClickNewBill)
}

// GetBills returns the session user's bills, most recent first.
func (b *Bills) GetBills(ctx context.Context) ([]models.Bill, error) {
	bills, err := b.store.List(ctx)
	if err != nil {
		return nil, err
	}
	models.SortByDateDesc(bills)
	return bills, nil
}

// ServePage renders the bill list.
func (b *Bills) ServePage(w http.ResponseWriter, r *http.Request) {
	bills, err := b.GetBills(r.Context())
	if err != nil {
		renderError(w, r, b.views, views.PathBills, err)
		return
	}
	render(r.Context(), w, b.views, http.StatusOK, views.RouteData{
		Pathname: views.PathBills,
		Data:     views.BillsData{Bills: bills, Summary: calculator.Summarize(bills)},
	})
}

// HandleClickIconEye renders the bill list with the receipt of bill {id}
// open in the modal.
func (b *Bills) HandleClickIconEye(w http.ResponseWriter, r *http.Request) {
	bills, err := b.GetBills(r.Context())
	if err != nil {
		renderError(w, r, b.views, views.PathBills, err)
		return
	}

	id := chi.URLParam(r, "id")
	for i := range bills {
		if bills[i].ID == id {
			file := bills[i].File
			render(r.Context(), w, b.views, http.StatusOK, views.RouteData{
				Pathname: views.PathBills,
				Data:     views.BillsData{Bills: bills, Summary: calculator.Summarize(bills), Modal: &file},
			})
			return
		}
	}
	renderError(w, r, b.views, views.PathBills, client.NewNetworkError(http.StatusNotFound))
}

// HandleClickNewBill moves to the new bill form.
func (b *Bills) HandleClickNewBill(w http.ResponseWriter, r *http.Request) {
	OnNavigate(w, r, views.PathNewBill)
}
