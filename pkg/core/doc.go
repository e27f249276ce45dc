// Package core provides the widget and element tree that hosts bridged web
// views.
//
// Widgets are immutable configuration. Elements are their mounted
// instances; a StatefulWidget's element owns a State that survives
// rebuilds and is disposed when the element unmounts. A BuildOwner collects
// elements marked dirty by SetState and rebuilds them in depth order on
// FlushBuild.
//
// Controllers that hold native resources are tied to a State with
// [UseController] so they are released exactly once on unmount.
package core
