// Package nativeload extracts a native shared library bundled inside the
// application and loads it into the running process.
//
// A bundle is any fs.FS, usually an embed.FS, holding files named
// "<namespace>/<name><ext>". LoadLibrary finds the file for the requested
// name, copies it to a uniquely named file in the scratch directory, checks
// the copy byte for byte against the bundle and hands it to the OS loader:
//
//	//go:embed native
//	var bundle embed.FS
//
//	loader, err := nativeload.New(nativeload.WithResources(bundle))
//	if err != nil {
//		return err
//	}
//	defer nativeload.Cleanup(ctx)
//
//	lib, err := loader.LoadLibrary(ctx, "libfoo")
//
// Nothing is retried. Call LoadLibrary again to retry with a fresh scratch file.
package nativeload
