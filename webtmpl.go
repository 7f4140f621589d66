// Package webtmpl renders flat HTML templates for small web projects.
//
// Templates are plain .html files under a root folder. A template can pull
// in other templates, keep parts only for one output mode or one kind of
// request, and receive values through placeholders:
//
//	{{ include('Partials/head') }}
//	<!-- @if_html_start-->
//	<link rel="stylesheet" href="{{ url }}assets/css/interface.css">
//	<!-- @if_html_end-->
//	<!-- @if_full_start--><nav>...</nav><!-- @if_full_end-->
//	<h1>{{ title }}</h1>
//
// # Basic Usage
//
//	engine, err := webtmpl.New(webtmpl.ModeHTML, "templates")
//	if err != nil {
//	    return err
//	}
//	html, err := engine.Show(ctx, "login", map[string]any{
//	    "title": "Sign in",
//	})
//
// # Processing Order
//
// Every render runs the same passes in the same order:
//
//  1. {{ include('name') }} markers are replaced by the raw content of the
//     named template, again and again until none remain.
//  2. @if_<mode> blocks of a mode other than the engine mode are removed.
//  3. @if_ajax blocks are removed for normal requests, @if_full blocks for
//     ajax requests.
//  4. HTML comments are removed, including the block delimiters that
//     survived steps 2 and 3.
//  5. {{ url }}, {{ debug }} and the caller's {{ key }} placeholders are
//     substituted; unknown placeholders stay as they are.
//
// # Error Handling
//
// A missing template, root or included, fails the render with an error
// matching ErrTemplateNotFound; it never renders as empty output:
//
//	if _, err := engine.Show(ctx, "missing", nil); webtmpl.IsNotFound(err) {
//	    // 404
//	}
//
// # Configuration
//
// Customize the engine with functional options:
//
//	engine, _ := webtmpl.New(webtmpl.ModeRaw, "templates",
//	    webtmpl.WithSource(webtmpl.NewCachedSource(webtmpl.NewOSSource(), webtmpl.DefaultCacheConfig())),
//	    webtmpl.WithDebugFlag(app),
//	    webtmpl.WithLogger(logger),
//	)
package webtmpl
