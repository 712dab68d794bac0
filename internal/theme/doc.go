// Package theme loads the CSS that styles the floatify bubble and menu.
//
// Themes are plain GTK CSS files. A theme named "foo" resolves to
// $XDG_CONFIG_HOME/floatify/themes/foo.css first and to the bundled copy
// second, so users can override a bundled theme by dropping a file with the
// same name into their themes directory. Files starting with an underscore
// are partials: they are never listed as themes and are only pulled in
// through @import. User themes are watched and re-applied when they or any
// partial beside them change.
package theme
