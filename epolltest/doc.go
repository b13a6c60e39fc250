// Package epolltest provides utilities for testing code that uses, or
// implements resources for, the epoll package.
package epolltest
