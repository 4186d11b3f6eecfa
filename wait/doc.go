// Copyright 2026 fluentwait Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package wait implements polling waits over a search facility.

# Overview

A FluentWait carries the polling policy (timeout, interval, ignored
errors, custom message) and creates LocatorMatcher values. A matcher holds a
locator, an ordered list of attribute filters and a negation flag; each
condition method polls Find until the condition holds or the wait expires.

	w := wait.New(s).AtMost(10 * time.Second).PollingEvery(200 * time.Millisecond)
	err := w.UntilSelector("button").WithID("submit").IsEnabled(ctx)
	err = w.UntilSelector(".spinner").Not().IsPresent(ctx)
	err = w.Until(locator.ByCSS("li")).With("data-state").EqualTo("open").HasSize(ctx, 2)

# Negation

Not returns a matcher that shares the receiver's filter list: a filter
appended through either matcher is seen by both.

# Errors

Find treats ELEMENT_NOT_FOUND and STALE_ELEMENT errors from the search as an
empty result. The poll loop ignores those codes by default and stops on
any other error. An expired wait returns a WAIT_TIMEOUT *types.Error whose
message lists the matcher's filters.
*/
package wait
