package collect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/accrava/secretsweep/internal/types"
)

// pageStateJS returns every script element and both storage areas. Storage
// access can throw on opaque origins, so each area reports its own error.
const pageStateJS = `(() => {
	const out = {scripts: [], local: [], session: [], localError: "", sessionError: ""};
	document.querySelectorAll('script').forEach(s => {
		out.scripts.push({src: s.src || "", text: s.src ? "" : s.innerHTML});
	});
	const dump = (name, area) => {
		try {
			const st = window[name];
			for (let i = 0; i < st.length; i++) {
				const k = st.key(i);
				area.push({key: k, value: String(st.getItem(k))});
			}
		} catch (e) {
			out[name === 'localStorage' ? 'localError' : 'sessionError'] = String(e);
		}
	};
	dump('localStorage', out.local);
	dump('sessionStorage', out.session);
	return out;
})()`

type pageState struct {
	Scripts []struct {
		Src  string `json:"src"`
		Text string `json:"text"`
	} `json:"scripts"`
	Local        []Entry `json:"local"`
	Session      []Entry `json:"session"`
	LocalError   string  `json:"localError"`
	SessionError string  `json:"sessionError"`
}

// Browser loads a live page in headless Chrome and collects its scripts and
// web storage.
type Browser struct {
	URL      string
	Timeout  time.Duration
	ExecPath string
	// SkipScripts and SkipStorage narrow what is returned.
	SkipScripts bool
	SkipStorage bool
}

func (b Browser) Name() string { return "browser:" + b.URL }

func (b Browser) Collect(ctx context.Context) ([]types.ScanUnit, error) {
	if b.URL == "" {
		return nil, errors.New("browser collector: no url")
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	if b.Timeout > 0 {
		bctx, cancel = context.WithTimeout(bctx, b.Timeout)
		defer cancel()
	}

	var st pageState
	err := chromedp.Run(bctx,
		chromedp.Navigate(b.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(pageStateJS, &st),
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", b.URL, err)
	}
	return b.units(st)
}

func (b Browser) units(st pageState) ([]types.ScanUnit, error) {
	var units []types.ScanUnit
	if !b.SkipScripts {
		for i, s := range st.Scripts {
			units = append(units, ScriptUnit(i, s.Src, s.Text))
		}
	}
	var errs []error
	if !b.SkipStorage {
		units = append(units, Storage{Local: st.Local, Session: st.Session}.Units()...)
		if st.LocalError != "" {
			errs = append(errs, fmt.Errorf("localStorage: %s", st.LocalError))
		}
		if st.SessionError != "" {
			errs = append(errs, fmt.Errorf("sessionStorage: %s", st.SessionError))
		}
	}
	return units, errors.Join(errs...)
}
