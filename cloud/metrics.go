/*
Copyright © 2021 the Hypotheticube authors.
This file is part of Hypotheticube.

Hypotheticube is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Hypotheticube is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Hypotheticube.  If not, see <http://www.gnu.org/licenses/>.
*/

package cloud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hypotheticube_fetches_total",
		Help: "Number of attempts to make local copies of files, by URI scheme and outcome.",
	}, []string{"scheme", "outcome"})

	fetchedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hypotheticube_fetched_bytes_total",
		Help: "Number of bytes written to local copies of files, by URI scheme.",
	}, []string{"scheme"})
)
