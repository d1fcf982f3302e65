package templates

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/catalog/internal/core"
)

// DatastarScript is the client runtime loaded by Page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Page is the full HTML document. The body opens the session event stream so
// debounced searches can be pushed after the fact.
func Page(title string, snap core.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.rawf(`<script type="module" src="%s"></script>`, DatastarScript)
		h.raw(`</head><body data-signals__ifmissing="{query: '', immediate: false, field: '', value: '', from: -1, to: -1, delta: 0}" data-init="@get('/api/events')">`)
		h.render(App(snap))
		h.raw(`</body></html>`)
	})
}

// App is the patch target for every interaction.
func App(snap core.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="catalog">`)
		h.render(Header(snap.Input, snap.SearchPending, snap.Cart.Count))
		h.raw(`<div id="alerts"></div>`)
		h.render(StatsCards(snap.Stats))
		h.render(ProductTable(snap))
		h.render(Pagination(snap))
		h.render(CartPanel(snap.Cart))
		h.raw(`</div>`)
	})
}

// Header shows the search box and the cart badge.
func Header(input string, pending bool, cartCount int) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="header"><h1>Products</h1>`)
		h.rawf(`<input id="search" type="search" placeholder="Search name or category" value="%s" `, attr(input))
		h.raw(`data-bind:query data-on:input="$immediate = false; @post('/api/query')" `)
		h.raw(`data-on:keydown="evt.key === 'Enter' && ($immediate = true, @post('/api/query'))">`)
		if pending {
			h.raw(`<span class="searching" aria-live="polite">Searching…</span>`)
		}
		h.raw(`<button id="cart-toggle" data-on:click="@post('/api/cart/toggle')">Cart`)
		h.rawf(` <span class="badge">%d</span></button>`, cartCount)
		h.raw(`</header>`)
	})
}

// StatsCards renders the summary above the table.
func StatsCards(s core.Stats) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section id="stats" class="stats">`)
		card := func(label, value string) {
			h.raw(`<div class="card"><span class="label">`)
			h.text(label)
			h.raw(`</span><span class="value">`)
			h.text(value)
			h.raw(`</span></div>`)
		}
		card("Total Products", strconv.Itoa(s.TotalProducts))
		card("Total Revenue", "$"+money(s.TotalRevenue))
		card("Low Stock", strconv.Itoa(s.LowStock))
		card("Categories", strconv.Itoa(s.Categories))
		h.raw(`</section>`)
	})
}

// ProductTable renders the current page in the current column order.
func ProductTable(snap core.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<table id="products"><thead><tr>`)
		for i, col := range snap.Columns {
			h.rawf(`<th draggable="true" data-column="%s" data-on:dragstart="$from = %d" `, attr(string(col.Key)), i)
			h.raw(`data-on:dragover="evt.preventDefault()" `)
			h.rawf(`data-on:drop="$to = %d; @post('/api/columns/move')"`, i)
			if col.Key.Sortable() {
				h.rawf(` data-on:click="@post('/api/sort/%s')"`, attr(string(col.Key)))
			}
			h.raw(`>`)
			h.text(col.Label)
			if snap.State.Sort.Field == col.Key && col.Key.Sortable() {
				h.raw(` `)
				h.text(snap.State.Sort.Order.Indicator())
			}
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		if len(snap.Rows) == 0 {
			h.rawf(`<tr><td class="empty" colspan="%d">No products found</td></tr>`, len(snap.Columns))
		}
		for _, row := range snap.Rows {
			p := row.Product
			if row.State.Editing && snap.Editing != nil {
				p = snap.Editing.Draft
			}
			h.rawf(`<tr id="row-%d">`, p.ID)
			for _, col := range snap.Columns {
				h.raw(`<td>`)
				switch {
				case col.Key == core.FieldActions:
					h.render(RowActions(p.ID, row.State))
				case row.State.Editing && col.Key != core.FieldID:
					h.render(EditCell(p, col.Key))
				default:
					h.text(p.Display(col.Key))
				}
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
	})
}

// RowActions shows the buttons for one row's mutation state.
func RowActions(id int, state core.RowState) templ.Component {
	return component(func(h *htmlWriter) {
		button := func(class, label, action string) {
			h.rawf(`<button class="%s" data-on:click="%s">`, class, attr(action))
			h.text(label)
			h.raw(`</button>`)
		}
		switch {
		case state.ConfirmingDelete:
			h.raw(`<span class="confirm">Delete this product?</span>`)
			button("danger", "Confirm", "@post('/api/delete/confirm')")
			button("secondary", "Cancel", "@post('/api/delete/cancel')")
		case state.Editing:
			button("primary", "Save", "@post('/api/edit/save')")
			button("secondary", "Cancel", "@post('/api/edit/cancel')")
		default:
			button("secondary", "Edit", "@post('/api/rows/"+strconv.Itoa(id)+"/edit')")
			button("danger", "Delete", "@post('/api/rows/"+strconv.Itoa(id)+"/delete')")
			button("primary", "Add to Cart", "@post('/api/rows/"+strconv.Itoa(id)+"/cart')")
		}
	})
}

// EditCell is the input for one field of the draft.
func EditCell(p core.Product, key core.FieldKey) templ.Component {
	return component(func(h *htmlWriter) {
		onChange := "$field = '" + string(key) + "'; $value = el.value; @patch('/api/edit')"
		if key == core.FieldStatus {
			h.rawf(`<select name="%s" data-on:change="%s">`, attr(string(key)), attr(onChange))
			for _, st := range core.Statuses {
				selected := ""
				if st == p.Status {
					selected = " selected"
				}
				h.rawf(`<option value="%s"%s>`, attr(string(st)), selected)
				h.text(st.Label())
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
			return
		}

		typ := "text"
		if key == core.FieldPrice || key == core.FieldStock {
			typ = "number"
		}
		h.rawf(`<input name="%s" type="%s" value="%s" data-on:change="%s">`,
			attr(string(key)), typ, attr(p.Display(key)), attr(onChange))
	})
}

// Pagination renders Prev, the compact page strip, Next and the page label.
func Pagination(snap core.Snapshot) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<nav id="pagination" class="pagination">`)
		disabled := func(off bool) string {
			if off {
				return " disabled"
			}
			return ""
		}
		h.rawf(`<button data-on:click="@post('/api/page/prev')"%s>Prev</button>`, disabled(!snap.CanPrev))
		for _, item := range snap.PageItems {
			switch {
			case item.Ellipsis:
				h.raw(`<span class="ellipsis">...</span>`)
			case item.Current:
				h.rawf(`<button class="current" aria-current="page">%d</button>`, item.Number)
			default:
				h.rawf(`<button data-on:click="@post('/api/page/%d')">%d</button>`, item.Number, item.Number)
			}
		}
		h.rawf(`<button data-on:click="@post('/api/page/next')"%s>Next</button>`, disabled(!snap.CanNext))
		h.rawf(`<span class="page-label">Page %d of %d</span>`, snap.Page, snap.TotalPages)
		h.raw(`</nav>`)
	})
}

// CartPanel lists cart lines when the cart is open.
func CartPanel(c core.CartSnapshot) templ.Component {
	return component(func(h *htmlWriter) {
		if !c.Open {
			h.raw(`<aside id="cart" hidden></aside>`)
			return
		}
		h.raw(`<aside id="cart" class="cart"><h2>Cart</h2>`)
		if len(c.Items) == 0 {
			h.raw(`<p class="empty">Your cart is empty</p>`)
		} else {
			h.raw(`<ul>`)
			for _, e := range c.Items {
				h.rawf(`<li id="cart-%d"><span class="name">`, e.ProductID)
				h.text(e.Name)
				h.rawf(`</span> <span class="price">$%s</span> `, money(e.Price))
				h.rawf(`<button data-on:click="$delta = -1; @post('/api/cart/%d/quantity')">-</button>`, e.ProductID)
				h.rawf(`<span class="qty">%d</span>`, e.Quantity)
				h.rawf(`<button data-on:click="$delta = 1; @post('/api/cart/%d/quantity')">+</button>`, e.ProductID)
				h.rawf(`<button data-on:click="@delete('/api/cart/%d')">Remove</button>`, e.ProductID)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		h.rawf(`<p class="total">Total: $%s</p>`, money(c.Total))
		h.raw(`<button data-on:click="@post('/api/cart/toggle')">Close</button></aside>`)
	})
}

// ErrorAlert replaces the alerts region with a user-facing error.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="alerts"><div class="alert alert-error" role="alert"><p class="message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="code">Code: `)
		h.text(code)
		h.raw(`</p></div></div>`)
	})
}
